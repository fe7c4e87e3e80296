// Package verification coordinates the completion of one verification
// action across the overlay, the vault, and the offline queue.
package verification

import (
	"context"
	"log/slog"
	"time"

	"jeevan/internal/beneficiary"
	"jeevan/internal/domain"
	"jeevan/internal/platform/metrics"
	"jeevan/internal/queue"
	"jeevan/internal/reachability"
	"jeevan/internal/vault"
)

// The biometric match marker is fixed: real matching is out of scope, the
// vault payload only records that the demo capture step ran.
const biometricMatchMarker = true

// Request is a completed verification handed over by the UI layer.
type Request struct {
	BeneficiaryID  string                 `json:"beneficiaryId"`
	LocalityID     string                 `json:"localityId"`
	Type           domain.ActionType      `json:"type"`
	ReferenceID    string                 `json:"referenceId,omitempty"`
	PhotoRef       string                 `json:"photoRef,omitempty"`
	Representative *domain.Representative `json:"representative,omitempty"`
}

// Result is returned to the UI once the action is durably committed.
type Result struct {
	ReferenceID string             `json:"referenceId"`
	Token       string             `json:"token"`
	RecordID    string             `json:"recordId"`
	Queued      bool               `json:"queued"`
	Beneficiary domain.Beneficiary `json:"beneficiary"`
}

// Service is the single entry point the UI calls to commit a verification.
type Service struct {
	beneficiaries *beneficiary.Service
	queue         *queue.Manager
	vault         *vault.Service
	monitor       *reachability.Monitor
	logger        *slog.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source; tests pin it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the coordinator's collaborators.
func NewService(
	beneficiaries *beneficiary.Service,
	queueMgr *queue.Manager,
	vaultSvc *vault.Service,
	monitor *reachability.Monitor,
	logger *slog.Logger,
	m *metrics.Metrics,
	opts ...Option,
) *Service {
	s := &Service{
		beneficiaries: beneficiaries,
		queue:         queueMgr,
		vault:         vaultSvc,
		monitor:       monitor,
		logger:        logger,
		metrics:       m,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Complete is the point of no return. Once it is called the action is
// considered durably committed: the overlay is mutated, the evidence record
// is sealed, and the submission is either queued (offline) or written
// straight to history (online). There is no rollback path; UI-level
// cancellation only applies before this call.
func (s *Service) Complete(ctx context.Context, req Request) (Result, error) {
	referenceID := req.ReferenceID
	if referenceID == "" {
		referenceID = queue.NewReferenceID(s.now())
	}

	online := s.monitor.Online()
	status := domain.SyncPending
	if online {
		status = domain.SyncSynced
	}

	record, err := s.beneficiaries.ApplyAction(ctx, req.BeneficiaryID, referenceID, status)
	if err != nil {
		return Result{}, err
	}

	evidence, err := s.vault.SaveVerification(ctx, domain.EvidencePayload{
		BeneficiaryID:  record.ID,
		Name:           record.Name,
		PhotoRef:       req.PhotoRef,
		BiometricMatch: biometricMatchMarker,
		ReferenceID:    referenceID,
	})
	if err != nil {
		return Result{}, err
	}

	queueReq := queue.Request{
		Beneficiary:    record,
		LocalityID:     req.LocalityID,
		Type:           req.Type,
		ReferenceID:    referenceID,
		Representative: req.Representative,
	}

	var receipt queue.Receipt
	if online {
		receipt, err = s.queue.AddSyncedVerification(ctx, queueReq)
	} else {
		receipt, err = s.queue.Enqueue(ctx, queueReq)
	}
	if err != nil {
		return Result{}, err
	}

	s.metrics.VerificationsCompleted.Inc()
	s.metrics.PendingRecords.Inc()
	if !online {
		s.metrics.QueueDepth.Inc()
	}

	s.logger.InfoContext(ctx, "verification committed",
		"reference_id", receipt.ReferenceID,
		"beneficiary_id", record.ID,
		"queued", !online,
	)
	return Result{
		ReferenceID: receipt.ReferenceID,
		Token:       receipt.Token,
		RecordID:    evidence.ID,
		Queued:      !online,
		Beneficiary: record,
	}, nil
}
