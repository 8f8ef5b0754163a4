package handoff

import (
	"context"
	"sync"
	"time"

	"igbridge/models"

	"go.uber.org/zap"
)

// MemoryStore keeps bundles in process memory. A ttl of zero keeps entries
// until they are taken or the process exits.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]models.CredentialBundle
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]models.CredentialBundle),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put overwrites any bundle already pending for deviceCode.
func (s *MemoryStore) Put(_ context.Context, deviceCode string, bundle models.CredentialBundle) error {
	if bundle.CreatedAt.IsZero() {
		bundle.CreatedAt = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[deviceCode] = bundle
	return nil
}

// Take looks up and removes the bundle in one critical section.
func (s *MemoryStore) Take(_ context.Context, deviceCode string) (*models.CredentialBundle, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bundle, exists := s.entries[deviceCode]
	if !exists {
		return nil, false, nil
	}
	delete(s.entries, deviceCode)
	if s.expired(bundle) {
		return nil, false, nil
	}
	return &bundle, true, nil
}

// Sweep drops expired entries and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for code, bundle := range s.entries {
		if s.expired(bundle) {
			delete(s.entries, code)
			removed++
		}
	}
	return removed
}

// Len reports the number of pending entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.Sweep(); removed > 0 {
					logger.Debug("handoff: swept expired entries", zap.Int("removed", removed))
				}
			}
		}
	}()
}

func (s *MemoryStore) expired(bundle models.CredentialBundle) bool {
	return s.ttl > 0 && s.now().Sub(bundle.CreatedAt) > s.ttl
}

var _ Store = (*MemoryStore)(nil)
