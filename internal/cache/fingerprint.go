package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint derives a deterministic fixed-length cache key from call
// arguments: the string form of each positional argument, then
// "name:value" for each named argument sorted by name, joined with ":"
// and hashed. Argument sequences with equal string representations
// always fingerprint identically. This is a derived key, not a
// security boundary.
func Fingerprint(args []any, named map[string]any) string {
	parts := make([]string, 0, len(args)+len(named))
	for _, arg := range args {
		parts = append(parts, fmt.Sprint(arg))
	}

	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s:%v", name, named[name]))
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}
