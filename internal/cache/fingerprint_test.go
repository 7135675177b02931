package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint([]any{1, "x", true}, map[string]any{"limit": 10, "offset": 0})
	b := Fingerprint([]any{1, "x", true}, map[string]any{"offset": 0, "limit": 10})
	require.Equal(t, a, b, "named argument order must not matter")
	require.Len(t, a, 64)
}

func TestFingerprint_DistinguishesArguments(t *testing.T) {
	base := Fingerprint([]any{1, 2}, nil)
	require.NotEqual(t, base, Fingerprint([]any{2, 1}, nil))
	require.NotEqual(t, base, Fingerprint([]any{1, 2}, map[string]any{"k": 1}))
	require.NotEqual(t, base, Fingerprint([]any{1}, nil))
}

func TestFingerprint_EqualStringForms(t *testing.T) {
	// Arguments with equal string representations fingerprint
	// identically; this is the documented contract.
	require.Equal(t, Fingerprint([]any{1}, nil), Fingerprint([]any{"1"}, nil))
}

func TestFingerprint_Empty(t *testing.T) {
	require.Equal(t, Fingerprint(nil, nil), Fingerprint([]any{}, map[string]any{}))
}
