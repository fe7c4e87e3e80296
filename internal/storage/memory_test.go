package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"jeevan/internal/domain"
	"jeevan/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) newSubmission(refID, beneficiaryID string) domain.Submission {
	return domain.Submission{
		BeneficiaryID: beneficiaryID,
		LocalityID:    "RJ-KHERLI",
		Timestamp:     time.Now(),
		Type:          domain.ActionProofOfLife,
		ReferenceID:   refID,
	}
}

func (s *InMemoryStoreSuite) TestQueueOrdering() {
	s.Run("preserves insertion order", func() {
		s.Require().NoError(s.store.AppendQueue(s.ctx, s.newSubmission("REF-1", "B-1")))
		s.Require().NoError(s.store.AppendQueue(s.ctx, s.newSubmission("REF-2", "B-2")))
		s.Require().NoError(s.store.AppendQueue(s.ctx, s.newSubmission("REF-3", "B-3")))

		queued, err := s.store.Queue(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(queued, 3)
		s.Equal("REF-1", queued[0].ReferenceID)
		s.Equal("REF-2", queued[1].ReferenceID)
		s.Equal("REF-3", queued[2].ReferenceID)
	})

	s.Run("empty queue reads as empty slice", func() {
		queued, err := NewInMemoryStore().Queue(s.ctx)
		s.Require().NoError(err)
		s.Empty(queued)
	})
}

func (s *InMemoryStoreSuite) TestHistoryNewestFirst() {
	s.Require().NoError(s.store.AppendHistory(s.ctx, s.newSubmission("REF-OLD", "B-1")))
	s.Require().NoError(s.store.AppendHistory(s.ctx, s.newSubmission("REF-NEW", "B-2")))

	history, err := s.store.History(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal("REF-NEW", history[0].ReferenceID)
	s.Equal("REF-OLD", history[1].ReferenceID)
}

func (s *InMemoryStoreSuite) TestHistoryDeduplicatesByReferenceID() {
	sub := s.newSubmission("REF-1", "B-1")
	s.Require().NoError(s.store.AppendHistory(s.ctx, sub))
	s.Require().NoError(s.store.AppendHistory(s.ctx, sub))

	history, err := s.store.History(s.ctx)
	s.Require().NoError(err)
	s.Len(history, 1)
}

func (s *InMemoryStoreSuite) TestPromoteToHistory() {
	s.Run("moves the batch out of the queue and into history", func() {
		subs := []domain.Submission{
			s.newSubmission("REF-1", "B-1"),
			s.newSubmission("REF-2", "B-2"),
		}
		for _, sub := range subs {
			s.Require().NoError(s.store.AppendQueue(s.ctx, sub))
		}

		s.Require().NoError(s.store.PromoteToHistory(s.ctx, subs))

		queued, err := s.store.Queue(s.ctx)
		s.Require().NoError(err)
		s.Empty(queued)

		history, err := s.store.History(s.ctx)
		s.Require().NoError(err)
		s.Len(history, 2)
	})

	s.Run("leaves unrelated queue items in place", func() {
		store := NewInMemoryStore()
		promoted := s.newSubmission("REF-A", "B-1")
		kept := s.newSubmission("REF-B", "B-2")
		s.Require().NoError(store.AppendQueue(s.ctx, promoted))
		s.Require().NoError(store.AppendQueue(s.ctx, kept))

		s.Require().NoError(store.PromoteToHistory(s.ctx, []domain.Submission{promoted}))

		queued, err := store.Queue(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(queued, 1)
		s.Equal("REF-B", queued[0].ReferenceID)
	})

	s.Run("replaying a promotion cannot duplicate history", func() {
		store := NewInMemoryStore()
		subs := []domain.Submission{s.newSubmission("REF-1", "B-1")}
		s.Require().NoError(store.AppendQueue(s.ctx, subs[0]))

		s.Require().NoError(store.PromoteToHistory(s.ctx, subs))
		s.Require().NoError(store.PromoteToHistory(s.ctx, subs))

		history, err := store.History(s.ctx)
		s.Require().NoError(err)
		s.Len(history, 1)
	})
}

func (s *InMemoryStoreSuite) TestCollectionIsolation() {
	s.Require().NoError(s.store.AppendQueue(s.ctx, s.newSubmission("REF-Q", "B-1")))
	s.Require().NoError(s.store.AppendHistory(s.ctx, s.newSubmission("REF-H", "B-2")))
	s.Require().NoError(s.store.AppendRecord(s.ctx, domain.SecureRecord{
		ID: "rec-1", Status: domain.RecordPendingSync, Timestamp: time.Now(),
	}))

	s.Require().NoError(s.store.ClearQueue(s.ctx))

	history, err := s.store.History(s.ctx)
	s.Require().NoError(err)
	s.Len(history, 1)

	records, err := s.store.Records(s.ctx)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *InMemoryStoreSuite) TestOverlays() {
	s.Run("saves and finds an overlay", func() {
		overlay := domain.Overlay{BeneficiaryID: "B-1", ServiceCount: 1, SyncStatus: domain.SyncPending}
		s.Require().NoError(s.store.SaveOverlay(s.ctx, overlay))

		found, err := s.store.FindOverlay(s.ctx, "B-1")
		s.Require().NoError(err)
		s.Equal(1, found.ServiceCount)
	})

	s.Run("returns ErrNotFound for an unknown beneficiary", func() {
		_, err := s.store.FindOverlay(s.ctx, "missing")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("overwrites on save", func() {
		s.Require().NoError(s.store.SaveOverlay(s.ctx, domain.Overlay{BeneficiaryID: "B-2", ServiceCount: 1}))
		s.Require().NoError(s.store.SaveOverlay(s.ctx, domain.Overlay{BeneficiaryID: "B-2", ServiceCount: 2}))

		found, err := s.store.FindOverlay(s.ctx, "B-2")
		s.Require().NoError(err)
		s.Equal(2, found.ServiceCount)
	})
}

func (s *InMemoryStoreSuite) TestVaultRecords() {
	s.Run("updates status in place", func() {
		record := domain.SecureRecord{ID: "rec-1", Status: domain.RecordPendingSync, Timestamp: time.Now()}
		s.Require().NoError(s.store.AppendRecord(s.ctx, record))

		s.Require().NoError(s.store.UpdateRecordStatus(s.ctx, "rec-1", domain.RecordSynced))

		records, err := s.store.Records(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(records, 1)
		s.Equal(domain.RecordSynced, records[0].Status)
	})

	s.Run("unknown id is a silent no-op", func() {
		s.Require().NoError(s.store.UpdateRecordStatus(s.ctx, "missing", domain.RecordSynced))
	})
}

func TestBroadcaster(t *testing.T) {
	t.Run("delivers a signal per subscribed collection", func(t *testing.T) {
		b := NewBroadcaster()
		ch, cancel := b.Subscribe(CollectionVault)
		defer cancel()

		b.Notify(CollectionVault)

		select {
		case <-ch:
		default:
			t.Fatal("expected a pending signal")
		}
	})

	t.Run("coalesces bursts into one pending signal", func(t *testing.T) {
		b := NewBroadcaster()
		ch, cancel := b.Subscribe(CollectionQueue)
		defer cancel()

		b.Notify(CollectionQueue)
		b.Notify(CollectionQueue)
		b.Notify(CollectionQueue)

		<-ch
		select {
		case <-ch:
			t.Fatal("expected bursts to coalesce")
		default:
		}
	})

	t.Run("ignores other collections", func(t *testing.T) {
		b := NewBroadcaster()
		ch, cancel := b.Subscribe(CollectionVault)
		defer cancel()

		b.Notify(CollectionHistory)

		select {
		case <-ch:
			t.Fatal("unexpected signal for a different collection")
		default:
		}
	})

	t.Run("cancel releases the subscription", func(t *testing.T) {
		b := NewBroadcaster()
		ch, cancel := b.Subscribe(CollectionVault)
		cancel()

		b.Notify(CollectionVault)

		select {
		case <-ch:
			t.Fatal("unexpected signal after cancel")
		default:
		}
	})
}
