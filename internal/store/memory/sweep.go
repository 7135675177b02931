package memory

import "time"

// SetReaper installs fn as the deletion path for entries removed by the
// background sweep. Without a reaper the sweep deletes the payload
// only; a cache layered on top installs a reaper that routes expired
// keys through its full delete pipeline so recency-list membership and
// the size counter are cleaned up together.
//
// fn is invoked outside the store lock and may call back into the
// store.
func (s *MemoryStore) SetReaper(fn func(key string)) {
	s.reaperMu.Lock()
	s.reaper = fn
	s.reaperMu.Unlock()
}

func (s *MemoryStore) sweepLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.SweepExpired()
		}
	}
}

// SweepExpired removes every expired entry and returns how many were
// removed. Expired keys are collected under the lock, then deleted
// outside it so the reaper can re-enter the store.
func (s *MemoryStore) SweepExpired() int {
	nowTs := now()
	s.mu.Lock()
	var expired []string
	for key, exp := range s.expiry {
		if nowTs.After(exp) {
			expired = append(expired, key)
		}
	}
	s.mu.Unlock()

	s.reaperMu.RLock()
	reap := s.reaper
	s.reaperMu.RUnlock()

	for _, key := range expired {
		if reap != nil {
			reap(key)
		} else {
			_, _ = s.Delete(key)
		}
	}
	return len(expired)
}
