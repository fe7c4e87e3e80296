// Package uploader provides the remote delivery implementations behind the
// sync.Uploader port.
package uploader

import (
	"context"
	"fmt"
	"sync"
	"time"

	syncer "jeevan/internal/sync"
	"jeevan/pkg/platform/sentinel"
)

// Simulated stands in for the real back office: it sleeps for a configurable
// delay (rural round-trip theater) and succeeds unless failure injection is
// switched on.
type Simulated struct {
	delay time.Duration

	mu   sync.Mutex
	fail bool
}

// NewSimulated builds a simulated uploader with the given artificial delay.
func NewSimulated(delay time.Duration) *Simulated {
	return &Simulated{delay: delay}
}

// SetFail switches failure injection on or off; demos and tests use it to
// exercise the retry-on-next-trigger path.
func (s *Simulated) SetFail(fail bool) {
	s.mu.Lock()
	s.fail = fail
	s.mu.Unlock()
}

func (s *Simulated) UploadBatch(ctx context.Context, _ syncer.Batch) error {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.delay):
		}
	}
	s.mu.Lock()
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return fmt.Errorf("simulated upload rejected: %w", sentinel.ErrUnavailable)
	}
	return nil
}
