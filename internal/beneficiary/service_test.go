package beneficiary

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"jeevan/internal/beneficiary/catalogue"
	"jeevan/internal/domain"
	"jeevan/internal/platform/logger"
	"jeevan/internal/storage"
	dErrors "jeevan/pkg/domain-errors"
)

const (
	testLocality    = "RJ-KHERLI"
	testBeneficiary = "RJ-1984-003311"
)

type BeneficiaryServiceSuite struct {
	suite.Suite
	store   *storage.InMemoryStore
	service *Service
	ctx     context.Context
}

func TestBeneficiaryServiceSuite(t *testing.T) {
	suite.Run(t, new(BeneficiaryServiceSuite))
}

func (s *BeneficiaryServiceSuite) SetupTest() {
	cat, err := catalogue.Load()
	s.Require().NoError(err)
	s.store = storage.NewInMemoryStore()
	s.service = NewService(cat, s.store, logger.Discard())
	s.ctx = context.Background()
}

func (s *BeneficiaryServiceSuite) TestList() {
	s.Run("returns catalogue records for a known locality", func() {
		records, err := s.service.List(s.ctx, testLocality)
		s.Require().NoError(err)
		s.Require().NotEmpty(records)
		for _, record := range records {
			s.Equal(testLocality, record.LocalityID)
			s.Zero(record.ServiceCount)
			s.False(record.Completed)
		}
	})

	s.Run("unknown locality is not found", func() {
		_, err := s.service.List(s.ctx, "RJ-NOWHERE")
		s.Require().Error(err)
		s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
	})

	s.Run("reflects persisted overlay state", func() {
		_, err := s.service.ApplyAction(s.ctx, testBeneficiary, "REF-1", domain.SyncPending)
		s.Require().NoError(err)

		records, err := s.service.List(s.ctx, testLocality)
		s.Require().NoError(err)
		var found bool
		for _, record := range records {
			if record.ID == testBeneficiary {
				found = true
				s.Equal(1, record.ServiceCount)
				s.Equal("REF-1", record.ReferenceID)
			}
		}
		s.True(found)
	})
}

func (s *BeneficiaryServiceSuite) TestApplyAction() {
	s.Run("first action leaves the case open", func() {
		record, err := s.service.ApplyAction(s.ctx, testBeneficiary, "REF-1", domain.SyncPending)
		s.Require().NoError(err)
		s.Equal(1, record.ServiceCount)
		s.False(record.Completed)
		s.Equal(domain.SyncPending, record.SyncStatus)
	})

	s.Run("second action closes the case", func() {
		_, err := s.service.ApplyAction(s.ctx, testBeneficiary, "REF-2", domain.SyncPending)
		s.Require().NoError(err)

		record, err := s.service.Get(s.ctx, testBeneficiary)
		s.Require().NoError(err)
		s.Equal(2, record.ServiceCount)
		s.True(record.Completed)
		s.Equal("REF-2", record.ReferenceID)
	})

	s.Run("unknown beneficiary is not found", func() {
		_, err := s.service.ApplyAction(s.ctx, "missing", "REF-X", domain.SyncPending)
		s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
	})
}

func (s *BeneficiaryServiceSuite) TestApplyActionStorageFailure() {
	svc := NewService(mustCatalogue(s.T()), failingOverlayStore{}, logger.Discard())
	_, err := svc.ApplyAction(s.ctx, testBeneficiary, "REF-1", domain.SyncPending)
	s.Require().Error(err)
	s.Equal(dErrors.CodeStorage, dErrors.CodeOf(err))
}

func (s *BeneficiaryServiceSuite) TestMarkSynced() {
	s.Run("flips the overlay to synced", func() {
		_, err := s.service.ApplyAction(s.ctx, testBeneficiary, "REF-1", domain.SyncPending)
		s.Require().NoError(err)

		s.Require().NoError(s.service.MarkSynced(s.ctx, testBeneficiary))

		record, err := s.service.Get(s.ctx, testBeneficiary)
		s.Require().NoError(err)
		s.Equal(domain.SyncSynced, record.SyncStatus)
	})

	s.Run("missing overlay is a no-op", func() {
		s.Require().NoError(s.service.MarkSynced(s.ctx, "RJ-1979-007742"))
	})
}

func (s *BeneficiaryServiceSuite) TestGetFallsBackToCatalogueOnStoreError() {
	svc := NewService(mustCatalogue(s.T()), failingOverlayStore{}, logger.Discard())
	record, err := svc.Get(s.ctx, testBeneficiary)
	s.Require().NoError(err)
	s.Zero(record.ServiceCount)
}

func mustCatalogue(t *testing.T) *catalogue.Catalogue {
	t.Helper()
	cat, err := catalogue.Load()
	if err != nil {
		t.Fatalf("load catalogue: %v", err)
	}
	return cat
}

// failingOverlayStore simulates a full device disk: reads miss, writes fail.
type failingOverlayStore struct{}

func (failingOverlayStore) SaveOverlay(context.Context, domain.Overlay) error {
	return fmt.Errorf("disk full")
}

func (failingOverlayStore) FindOverlay(context.Context, string) (domain.Overlay, error) {
	return domain.Overlay{}, storage.ErrNotFound
}
