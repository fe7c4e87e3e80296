package storage

import (
	"context"
	"sync"

	"jeevan/internal/domain"
)

// InMemoryStore keeps every collection in process memory. It backs tests and
// demo runs; field devices use the SQLite store. It intentionally favors
// clarity over performance.
type InMemoryStore struct {
	mu       sync.RWMutex
	overlays map[string]domain.Overlay
	queue    []domain.Submission
	history  []domain.Submission
	vault    []domain.SecureRecord

	*Broadcaster
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		overlays:    make(map[string]domain.Overlay),
		Broadcaster: NewBroadcaster(),
	}
}

func (s *InMemoryStore) SaveOverlay(_ context.Context, overlay domain.Overlay) error {
	s.mu.Lock()
	s.overlays[overlay.BeneficiaryID] = overlay
	s.mu.Unlock()
	s.Notify(CollectionOverlay)
	return nil
}

func (s *InMemoryStore) FindOverlay(_ context.Context, beneficiaryID string) (domain.Overlay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if overlay, ok := s.overlays[beneficiaryID]; ok {
		return overlay, nil
	}
	return domain.Overlay{}, ErrNotFound
}

func (s *InMemoryStore) AppendQueue(_ context.Context, sub domain.Submission) error {
	s.mu.Lock()
	s.queue = append(s.queue, sub)
	s.mu.Unlock()
	s.Notify(CollectionQueue)
	return nil
}

// Queue returns the pending submissions, insertion order preserved.
func (s *InMemoryStore) Queue(_ context.Context) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Submission{}, s.queue...), nil
}

func (s *InMemoryStore) ClearQueue(_ context.Context) error {
	s.mu.Lock()
	s.queue = nil
	s.mu.Unlock()
	s.Notify(CollectionQueue)
	return nil
}

func (s *InMemoryStore) AppendHistory(_ context.Context, sub domain.Submission) error {
	s.mu.Lock()
	s.prependHistoryLocked(sub)
	s.mu.Unlock()
	s.Notify(CollectionHistory)
	return nil
}

// History returns the log newest-first.
func (s *InMemoryStore) History(_ context.Context) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Submission{}, s.history...), nil
}

func (s *InMemoryStore) ClearHistory(_ context.Context) error {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
	s.Notify(CollectionHistory)
	return nil
}

// PromoteToHistory migrates subs from queue to history under one lock, the
// in-memory equivalent of the SQLite store's single transaction.
func (s *InMemoryStore) PromoteToHistory(_ context.Context, subs []domain.Submission) error {
	s.mu.Lock()
	promoted := make(map[string]struct{}, len(subs))
	for _, sub := range subs {
		s.prependHistoryLocked(sub)
		promoted[sub.ReferenceID] = struct{}{}
	}
	remaining := s.queue[:0]
	for _, queued := range s.queue {
		if _, ok := promoted[queued.ReferenceID]; !ok {
			remaining = append(remaining, queued)
		}
	}
	s.queue = remaining
	s.mu.Unlock()
	s.Notify(CollectionQueue)
	s.Notify(CollectionHistory)
	return nil
}

// prependHistoryLocked inserts newest-first and keeps history keyed by
// reference id so a replayed promotion cannot duplicate an entry.
func (s *InMemoryStore) prependHistoryLocked(sub domain.Submission) {
	for _, existing := range s.history {
		if existing.ReferenceID == sub.ReferenceID {
			return
		}
	}
	s.history = append([]domain.Submission{sub}, s.history...)
}

func (s *InMemoryStore) AppendRecord(_ context.Context, record domain.SecureRecord) error {
	s.mu.Lock()
	s.vault = append(s.vault, record)
	s.mu.Unlock()
	s.Notify(CollectionVault)
	return nil
}

func (s *InMemoryStore) Records(_ context.Context) ([]domain.SecureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SecureRecord{}, s.vault...), nil
}

func (s *InMemoryStore) UpdateRecordStatus(_ context.Context, id string, status domain.RecordStatus) error {
	s.mu.Lock()
	for i := range s.vault {
		if s.vault[i].ID == id {
			s.vault[i].Status = status
			break
		}
	}
	s.mu.Unlock()
	s.Notify(CollectionVault)
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
