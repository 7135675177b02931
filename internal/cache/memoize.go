package cache

import "time"

// Memoize wraps fn so results are served from c when possible. Cache
// keys are "<prefix>:<fingerprint of arg>"; ttl <= 0 uses the cache
// default. fn is only called on a miss, and its error is never cached.
func Memoize[A any, R any](c *Cache, prefix string, ttl time.Duration, fn func(A) (R, error)) func(A) (R, error) {
	return func(arg A) (R, error) {
		var zero R
		key := prefix + ":" + Fingerprint([]any{arg}, nil)

		var cached R
		found, err := c.Get(key, &cached)
		if err != nil {
			return zero, err
		}
		if found {
			return cached, nil
		}

		result, err := fn(arg)
		if err != nil {
			return zero, err
		}
		if err := c.Set(key, result, ttl); err != nil {
			return zero, err
		}
		return result, nil
	}
}

// MemoizeBatch wraps a batched fetch so only ids missing from c are
// passed through. Each fetched result is cached individually under
// "<prefix>:<fingerprint of id>", keyed by idOf, and the returned map
// combines cached and freshly fetched results for the requested ids.
// Ids the fetch did not return are simply absent from the map.
func MemoizeBatch[ID comparable, R any](
	c *Cache,
	prefix string,
	ttl time.Duration,
	fetch func([]ID) ([]R, error),
	idOf func(R) ID,
) func([]ID) (map[ID]R, error) {
	keyFor := func(id ID) string {
		return prefix + ":" + Fingerprint([]any{id}, nil)
	}

	return func(ids []ID) (map[ID]R, error) {
		if len(ids) == 0 {
			return map[ID]R{}, nil
		}

		results := make(map[ID]R, len(ids))
		var uncached []ID
		for _, id := range ids {
			var cached R
			found, err := c.Get(keyFor(id), &cached)
			if err != nil {
				return nil, err
			}
			if found {
				results[id] = cached
			} else {
				uncached = append(uncached, id)
			}
		}
		if len(uncached) == 0 {
			return results, nil
		}

		fetched, err := fetch(uncached)
		if err != nil {
			return nil, err
		}
		for _, r := range fetched {
			id := idOf(r)
			if err := c.Set(keyFor(id), r, ttl); err != nil {
				return nil, err
			}
			results[id] = r
		}
		return results, nil
	}
}
