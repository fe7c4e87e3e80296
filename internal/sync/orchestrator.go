// Package sync decides when to attempt synchronization and drives the vault
// and the offline queue to a consistent delivered state together.
package sync

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"jeevan/internal/beneficiary"
	"jeevan/internal/domain"
	"jeevan/internal/platform/metrics"
	"jeevan/internal/queue"
	"jeevan/internal/reachability"
	"jeevan/internal/storage"
	"jeevan/internal/vault"
)

// Result summarizes one sync attempt for observers.
type Result struct {
	Skipped  bool   `json:"skipped"`
	Reason   string `json:"reason,omitempty"`
	Uploaded int    `json:"uploaded"`
	Promoted int    `json:"promoted"`
}

// Orchestrator watches reachability and the vault's pending set, and runs at
// most one upload attempt at a time. Failed attempts leave every collection
// untouched; the next external state change re-triggers.
type Orchestrator struct {
	vault         *vault.Service
	queue         *queue.Manager
	beneficiaries *beneficiary.Service
	monitor       *reachability.Monitor
	notifier      storage.Notifier
	uploader      Uploader
	logger        *slog.Logger
	metrics       *metrics.Metrics

	group      singleflight.Group
	inFlight   atomic.Bool
	onComplete func(Result)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCompletionCallback registers the UI-facing callback invoked after every
// successful sync.
func WithCompletionCallback(fn func(Result)) Option {
	return func(o *Orchestrator) { o.onComplete = fn }
}

// NewOrchestrator wires the orchestrator's collaborators.
func NewOrchestrator(
	vaultSvc *vault.Service,
	queueMgr *queue.Manager,
	beneficiaries *beneficiary.Service,
	monitor *reachability.Monitor,
	notifier storage.Notifier,
	uploader Uploader,
	logger *slog.Logger,
	m *metrics.Metrics,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		vault:         vaultSvc,
		queue:         queueMgr,
		beneficiaries: beneficiaries,
		monitor:       monitor,
		notifier:      notifier,
		uploader:      uploader,
		logger:        logger,
		metrics:       m,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run blocks, reacting to reachability transitions and vault writes until ctx
// is cancelled. Both signals funnel into TrySync, which enforces the trigger
// conditions itself, so a spurious wake-up is harmless.
func (o *Orchestrator) Run(ctx context.Context) error {
	online, cancelOnline := o.monitor.Subscribe()
	defer cancelOnline()
	vaultChanged, cancelVault := o.notifier.Subscribe(storage.CollectionVault)
	defer cancelVault()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-online:
		case <-vaultChanged:
		}
		if _, err := o.TrySync(ctx); err != nil {
			o.logger.WarnContext(ctx, "sync attempt failed", "error", err)
		}
	}
}

// TrySync runs one sync attempt if the trigger conditions hold: reachable
// (which already folds in the manual offline override), at least one pending
// record, and no attempt already in flight. Concurrent triggers collapse into
// a single attempt.
func (o *Orchestrator) TrySync(ctx context.Context) (Result, error) {
	if !o.monitor.Online() {
		return Result{Skipped: true, Reason: "offline"}, nil
	}

	v, err, _ := o.group.Do("sync", func() (any, error) {
		o.inFlight.Store(true)
		defer o.inFlight.Store(false)
		return o.sync(ctx)
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

// InFlight reports whether an upload attempt is currently running.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// PendingCount returns how many vault records still await sync.
func (o *Orchestrator) PendingCount(ctx context.Context) (int, error) {
	pending, err := o.vault.Pending(ctx)
	if err != nil {
		return 0, err
	}
	return len(pending), nil
}

func (o *Orchestrator) sync(ctx context.Context) (Result, error) {
	pending, err := o.vault.Pending(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(pending) == 0 {
		return Result{Skipped: true, Reason: "nothing pending"}, nil
	}

	queued, err := o.queue.Queue(ctx)
	if err != nil {
		return Result{}, err
	}

	o.metrics.SyncAttempts.Inc()
	if err := o.uploader.UploadBatch(ctx, Batch{Records: pending, Submissions: queued}); err != nil {
		// Leave every collection untouched. The next reachability or
		// vault transition re-triggers; no timer-driven retry.
		o.metrics.SyncFailures.Inc()
		return Result{}, err
	}

	for _, record := range pending {
		if err := o.vault.UpdateStatus(ctx, record.ID, domain.RecordSynced); err != nil {
			return Result{}, err
		}
	}
	if err := o.queue.PromoteToHistory(ctx, queued); err != nil {
		return Result{}, err
	}
	for _, sub := range queued {
		if err := o.beneficiaries.MarkSynced(ctx, sub.BeneficiaryID); err != nil {
			o.logger.WarnContext(ctx, "mark beneficiary synced",
				"beneficiary_id", sub.BeneficiaryID, "error", err)
		}
	}

	o.metrics.PendingRecords.Set(0)
	o.metrics.QueueDepth.Set(0)

	result := Result{Uploaded: len(pending), Promoted: len(queued)}
	o.logger.InfoContext(ctx, "sync completed",
		"uploaded_records", result.Uploaded,
		"promoted_submissions", result.Promoted,
	)
	if o.onComplete != nil {
		o.onComplete(result)
	}
	return result, nil
}
