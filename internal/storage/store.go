package storage

import (
	"context"

	"jeevan/internal/domain"
)

// Collection names the independent persisted collections. They are durably
// isolated: clearing one never touches another.
type Collection string

const (
	CollectionOverlay Collection = "beneficiary_overlay"
	CollectionQueue   Collection = "offline_queue"
	CollectionHistory Collection = "history_log"
	CollectionVault   Collection = "verification_queue"
)

// Stores are interface-driven to keep the domain logic testable and to allow
// swapping in-memory and durable persistence without rewiring business code.

// OverlayStore persists the per-beneficiary verification state laid over the
// read-only base catalogue.
type OverlayStore interface {
	SaveOverlay(ctx context.Context, overlay domain.Overlay) error
	FindOverlay(ctx context.Context, beneficiaryID string) (domain.Overlay, error)
}

// SubmissionStore owns the offline queue and the history log.
//
// PromoteToHistory is the atomic batch transition: in ONE durable write it
// inserts the items into history (keyed by reference id, replay-safe) and
// removes them from the queue. A crash can therefore never leave an item in
// both collections, and re-running a sync cannot duplicate history rows.
type SubmissionStore interface {
	AppendQueue(ctx context.Context, sub domain.Submission) error
	Queue(ctx context.Context) ([]domain.Submission, error)
	ClearQueue(ctx context.Context) error

	AppendHistory(ctx context.Context, sub domain.Submission) error
	History(ctx context.Context) ([]domain.Submission, error)
	ClearHistory(ctx context.Context) error

	PromoteToHistory(ctx context.Context, subs []domain.Submission) error
}

// VaultStore is the append-only evidence log. Records are never deleted;
// UpdateRecordStatus is a silent no-op for unknown ids so replays stay safe.
type VaultStore interface {
	AppendRecord(ctx context.Context, record domain.SecureRecord) error
	Records(ctx context.Context) ([]domain.SecureRecord, error)
	UpdateRecordStatus(ctx context.Context, id string, status domain.RecordStatus) error
}

// Notifier lets independent observers react to collection writes without
// polling. The returned cancel func releases the subscription.
type Notifier interface {
	Subscribe(collection Collection) (<-chan struct{}, func())
}

// Store is the full persistence surface the agent wires at startup.
type Store interface {
	OverlayStore
	SubmissionStore
	VaultStore
	Notifier
	Close() error
}
