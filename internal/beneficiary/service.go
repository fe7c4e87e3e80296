// Package beneficiary serves merged pensioner records: the read-only embedded
// catalogue plus the persisted per-device overlay of verification state.
package beneficiary

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"jeevan/internal/beneficiary/catalogue"
	"jeevan/internal/domain"
	"jeevan/internal/storage"
	dErrors "jeevan/pkg/domain-errors"
)

// Service merges catalogue and overlay on read and applies verification
// actions to the overlay.
type Service struct {
	catalogue *catalogue.Catalogue
	overlays  storage.OverlayStore
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source; tests pin it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs the beneficiary service.
func NewService(cat *catalogue.Catalogue, overlays storage.OverlayStore, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		catalogue: cat,
		overlays:  overlays,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the merged records for one locality, catalogue order
// preserved.
func (s *Service) List(ctx context.Context, localityID string) ([]domain.Beneficiary, error) {
	loc, ok := s.catalogue.Locality(localityID)
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "unknown locality")
	}
	merged := make([]domain.Beneficiary, 0, len(loc.Beneficiaries))
	for _, base := range loc.Beneficiaries {
		merged = append(merged, s.withOverlay(ctx, base))
	}
	return merged, nil
}

// Get returns one merged record.
func (s *Service) Get(ctx context.Context, id string) (domain.Beneficiary, error) {
	base, ok := s.catalogue.Beneficiary(id)
	if !ok {
		return domain.Beneficiary{}, dErrors.New(dErrors.CodeNotFound, "unknown beneficiary")
	}
	return s.withOverlay(ctx, base), nil
}

// Localities returns the locality ids the device serves.
func (s *Service) Localities() []string {
	return s.catalogue.LocalityIDs()
}

// ApplyAction records one completed verification action: increments the
// service count, closes the case once the completion threshold is reached,
// and stamps the latest reference id and sync status. Returns the merged
// record after the mutation.
func (s *Service) ApplyAction(ctx context.Context, beneficiaryID, referenceID string, status domain.SyncStatus) (domain.Beneficiary, error) {
	base, ok := s.catalogue.Beneficiary(beneficiaryID)
	if !ok {
		return domain.Beneficiary{}, dErrors.New(dErrors.CodeNotFound, "unknown beneficiary")
	}

	overlay, err := s.overlays.FindOverlay(ctx, beneficiaryID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return domain.Beneficiary{}, dErrors.Wrap(err, dErrors.CodeInternal, "read overlay")
	}
	overlay.BeneficiaryID = beneficiaryID
	overlay.ServiceCount++
	overlay.Completed = overlay.ServiceCount >= domain.CompletionThreshold
	overlay.ReferenceID = referenceID
	overlay.SyncStatus = status
	if overlay.Venue == "" {
		overlay.Venue = base.Venue
	}
	overlay.UpdatedAt = s.now()

	if err := s.overlays.SaveOverlay(ctx, overlay); err != nil {
		return domain.Beneficiary{}, dErrors.Wrap(err, dErrors.CodeStorage, "persist overlay")
	}
	s.logger.InfoContext(ctx, "verification action applied",
		"beneficiary_id", beneficiaryID,
		"service_count", overlay.ServiceCount,
		"completed", overlay.Completed,
	)
	return domain.Merge(base, overlay), nil
}

// MarkSynced flips a beneficiary's overlay to synced after its submission
// reaches the remote system.
func (s *Service) MarkSynced(ctx context.Context, beneficiaryID string) error {
	overlay, err := s.overlays.FindOverlay(ctx, beneficiaryID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "read overlay")
	}
	overlay.SyncStatus = domain.SyncSynced
	overlay.UpdatedAt = s.now()
	if err := s.overlays.SaveOverlay(ctx, overlay); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "persist overlay")
	}
	return nil
}

func (s *Service) withOverlay(ctx context.Context, base domain.Beneficiary) domain.Beneficiary {
	overlay, err := s.overlays.FindOverlay(ctx, base.ID)
	if err != nil {
		// Absent or corrupt overlay reads as catalogue state.
		return base
	}
	return domain.Merge(base, overlay)
}
