// Package queue is the offline queue manager: the ordered, durable list of
// submissions awaiting delivery, and the separate durable log of delivered
// submissions.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"jeevan/internal/domain"
	"jeevan/internal/storage"
	dErrors "jeevan/pkg/domain-errors"
)

// Manager owns the queue and history collections. All durable writes go
// through the injected store; a write failure here means device storage is
// full or broken and must reach the operator, never be swallowed.
type Manager struct {
	store      storage.SubmissionStore
	signingKey []byte
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source; tests pin it.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager constructs a queue manager. signingKey signs the receipt tokens
// handed back to the UI.
func NewManager(store storage.SubmissionStore, signingKey []byte, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		signingKey: signingKey,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Request describes one completed verification action to record.
type Request struct {
	Beneficiary    domain.Beneficiary
	LocalityID     string
	Type           domain.ActionType
	ReferenceID    string // generated when empty
	Representative *domain.Representative
}

// Receipt is what the UI keeps after a submission is durably recorded.
type Receipt struct {
	ReferenceID string `json:"referenceId"`
	Token       string `json:"token"`
}

// Enqueue appends a pending submission to the queue. The reference id is
// assigned here if the caller did not supply one, and never changes again.
func (m *Manager) Enqueue(ctx context.Context, req Request) (Receipt, error) {
	sub, receipt, err := m.build(req, nil)
	if err != nil {
		return Receipt{}, err
	}
	if err := m.store.AppendQueue(ctx, sub); err != nil {
		return Receipt{}, dErrors.Wrap(err, dErrors.CodeStorage, "persist queued submission")
	}
	m.logger.InfoContext(ctx, "submission queued",
		"reference_id", receipt.ReferenceID,
		"beneficiary_id", sub.BeneficiaryID,
		"type", string(sub.Type),
	)
	return receipt, nil
}

// AddSyncedVerification is the online fast path: the submission goes straight
// to history with SyncedAt set, skipping the queue entirely.
func (m *Manager) AddSyncedVerification(ctx context.Context, req Request) (Receipt, error) {
	syncedAt := m.now()
	sub, receipt, err := m.build(req, &syncedAt)
	if err != nil {
		return Receipt{}, err
	}
	if err := m.store.AppendHistory(ctx, sub); err != nil {
		return Receipt{}, dErrors.Wrap(err, dErrors.CodeStorage, "persist synced submission")
	}
	m.logger.InfoContext(ctx, "submission recorded as synced",
		"reference_id", receipt.ReferenceID,
		"beneficiary_id", sub.BeneficiaryID,
	)
	return receipt, nil
}

// Queue returns pending submissions, insertion order preserved. A corrupt or
// absent collection reads as empty.
func (m *Manager) Queue(ctx context.Context) ([]domain.Submission, error) {
	subs, err := m.store.Queue(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "read queue")
	}
	return subs, nil
}

// ClearQueue empties the queue irreversibly. Callers must have durably
// migrated anything they still need; prefer PromoteToHistory for the sync
// path.
func (m *Manager) ClearQueue(ctx context.Context) error {
	if err := m.store.ClearQueue(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "clear queue")
	}
	return nil
}

// PromoteToHistory stamps each item with SyncedAt and moves the batch from
// queue to history as one durable transition.
func (m *Manager) PromoteToHistory(ctx context.Context, subs []domain.Submission) error {
	now := m.now()
	stamped := make([]domain.Submission, len(subs))
	for i, sub := range subs {
		sub.SyncedAt = &now
		stamped[i] = sub
	}
	if err := m.store.PromoteToHistory(ctx, stamped); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "promote submissions to history")
	}
	return nil
}

// History returns delivered submissions newest-first, optionally filtered by
// locality. Entries lacking a locality id predate locality scoping and are
// always included.
func (m *Manager) History(ctx context.Context, localityID string) ([]domain.Submission, error) {
	subs, err := m.store.History(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "read history")
	}
	if localityID == "" {
		return subs, nil
	}
	filtered := make([]domain.Submission, 0, len(subs))
	for _, sub := range subs {
		if sub.LocalityID == "" || sub.LocalityID == localityID {
			filtered = append(filtered, sub)
		}
	}
	return filtered, nil
}

// ClearHistory empties the history log; reserved for manual data-reset
// tooling, never part of the sync path.
func (m *Manager) ClearHistory(ctx context.Context) error {
	if err := m.store.ClearHistory(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "clear history")
	}
	return nil
}

func (m *Manager) build(req Request, syncedAt *time.Time) (domain.Submission, Receipt, error) {
	if req.Beneficiary.ID == "" {
		return domain.Submission{}, Receipt{}, dErrors.New(dErrors.CodeBadRequest, "beneficiary id is required")
	}
	if req.Type != domain.ActionProofOfLife && req.Type != domain.ActionWakilAppointment {
		return domain.Submission{}, Receipt{}, dErrors.New(dErrors.CodeBadRequest, "unknown submission type")
	}

	referenceID := req.ReferenceID
	if referenceID == "" {
		referenceID = NewReferenceID(m.now())
	}
	token, err := m.mintToken(referenceID, req)
	if err != nil {
		return domain.Submission{}, Receipt{}, dErrors.Wrap(err, dErrors.CodeInternal, "mint receipt token")
	}

	sub := domain.Submission{
		BeneficiaryID: req.Beneficiary.ID,
		LocalityID:    req.LocalityID,
		Timestamp:     m.now(),
		Type:          req.Type,
		Payload: domain.SubmissionPayload{
			Beneficiary:    req.Beneficiary,
			Representative: req.Representative,
		},
		Token:       token,
		ReferenceID: referenceID,
		SyncedAt:    syncedAt,
	}
	return sub, Receipt{ReferenceID: referenceID, Token: token}, nil
}

// NewReferenceID builds a human-auditable unique id: date prefix for paper
// registers, uuid-derived suffix for uniqueness.
func NewReferenceID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return fmt.Sprintf("JVN-%s-%s", now.Format("20060102"), suffix)
}

// mintToken signs a compact receipt over the submission's identity. Demo-grade
// key handling; the claim set is what a real back office would countersign.
func (m *Manager) mintToken(referenceID string, req Request) (string, error) {
	claims := jwt.MapClaims{
		"ref": referenceID,
		"sub": req.Beneficiary.ID,
		"loc": req.LocalityID,
		"act": string(req.Type),
		"iat": m.now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
