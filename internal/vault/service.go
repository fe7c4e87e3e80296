// Package vault is the independent, append-only encrypted evidence log.
// It is decoupled from the delivery queue so evidence survives even if queue
// logic is buggy or cleared prematurely.
package vault

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"jeevan/internal/domain"
	"jeevan/internal/storage"
	dErrors "jeevan/pkg/domain-errors"
)

// Service appends encrypted evidence records and transitions their status.
type Service struct {
	store     storage.VaultStore
	encryptor Encryptor
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source; tests pin it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs the vault around its store and encryptor ports.
func NewService(store storage.VaultStore, encryptor Encryptor, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		encryptor: encryptor,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveVerification seals the minimal evidence payload and appends it with
// PENDING_SYNC status. Exactly one record per completed verification; the
// record is never deleted afterwards.
func (s *Service) SaveVerification(ctx context.Context, payload domain.EvidencePayload) (domain.SecureRecord, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return domain.SecureRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode evidence payload")
	}
	sealed, err := s.encryptor.Encrypt(plaintext)
	if err != nil {
		return domain.SecureRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "encrypt evidence payload")
	}

	record := domain.SecureRecord{
		ID:               uuid.NewString(),
		Timestamp:        s.now(),
		Status:           domain.RecordPendingSync,
		EncryptedPayload: sealed,
	}
	if err := s.store.AppendRecord(ctx, record); err != nil {
		return domain.SecureRecord{}, dErrors.Wrap(err, dErrors.CodeStorage, "persist evidence record")
	}
	s.logger.InfoContext(ctx, "evidence record appended",
		"record_id", record.ID,
		"reference_id", payload.ReferenceID,
	)
	return record, nil
}

// Records returns the full log regardless of status; callers filter.
func (s *Service) Records(ctx context.Context) ([]domain.SecureRecord, error) {
	records, err := s.store.Records(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "read evidence records")
	}
	return records, nil
}

// Pending returns only records still awaiting sync.
func (s *Service) Pending(ctx context.Context) ([]domain.SecureRecord, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	pending := records[:0:0]
	for _, record := range records {
		if record.Status == domain.RecordPendingSync {
			pending = append(pending, record)
		}
	}
	return pending, nil
}

// UpdateStatus transitions one record's status. An unknown id is a silent
// no-op: replay safety, not an error.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.RecordStatus) error {
	if err := s.store.UpdateRecordStatus(ctx, id, status); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "update evidence record status")
	}
	return nil
}

// Open decrypts one record's payload. A record that cannot be decrypted
// yields nil rather than an error, so one malformed entry never blocks
// reading the rest of the log.
func (s *Service) Open(record domain.SecureRecord) *domain.EvidencePayload {
	plaintext, err := s.encryptor.Decrypt(record.EncryptedPayload)
	if err != nil {
		s.logger.Warn("undecryptable evidence record", "record_id", record.ID, "error", err)
		return nil
	}
	var payload domain.EvidencePayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		s.logger.Warn("malformed evidence payload", "record_id", record.ID, "error", err)
		return nil
	}
	return &payload
}
