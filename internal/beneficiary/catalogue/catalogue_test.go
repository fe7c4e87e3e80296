package catalogue

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeevan/internal/domain"
)

func TestLoadEmbedded(t *testing.T) {
	cat, err := Load()
	require.NoError(t, err)

	ids := cat.LocalityIDs()
	require.NotEmpty(t, ids)
	assert.IsNonDecreasing(t, ids, "locality ids must be sorted")

	for _, id := range ids {
		loc, ok := cat.Locality(id)
		require.True(t, ok)
		assert.NotEmpty(t, loc.Beneficiaries)
	}
}

func TestLoadParsesLocalityFile(t *testing.T) {
	fsys := fstest.MapFS{
		"localities/test.yaml": &fstest.MapFile{Data: []byte(`
locality: RJ-TEST
name: Test Block
beneficiaries:
  - id: "B-1"
    name: Kamla Devi
    address: Ward 4
    monthly_payout: 1150
    pending_months: 3
    venue: HALL
  - id: "B-2"
    name: Ram Singh
    address: Ward 7
    monthly_payout: 1500
    pending_months: 1
`)},
	}

	cat, err := load(fsys)
	require.NoError(t, err)

	loc, ok := cat.Locality("RJ-TEST")
	require.True(t, ok)
	require.Len(t, loc.Beneficiaries, 2)

	first := loc.Beneficiaries[0]
	assert.Equal(t, "B-1", first.ID)
	assert.Equal(t, domain.VenueHall, first.Venue)
	assert.Equal(t, int64(1150), first.MonthlyPayout)
	assert.Equal(t, domain.SyncPending, first.SyncStatus)
	assert.Equal(t, "RJ-TEST", first.LocalityID)

	// Venue defaults to HOME when the file omits it.
	assert.Equal(t, domain.VenueHome, loc.Beneficiaries[1].Venue)

	record, ok := cat.Beneficiary("B-2")
	require.True(t, ok)
	assert.Equal(t, "Ram Singh", record.Name)
}

func TestLoadRejectsMissingLocalityID(t *testing.T) {
	fsys := fstest.MapFS{
		"localities/bad.yaml": &fstest.MapFile{Data: []byte("name: No ID\nbeneficiaries: []\n")},
	}
	_, err := load(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locality id is required")
}

func TestLoadRejectsDuplicateBeneficiaryIDs(t *testing.T) {
	fsys := fstest.MapFS{
		"localities/a.yaml": &fstest.MapFile{Data: []byte(`
locality: RJ-A
beneficiaries:
  - id: "B-1"
    name: First
`)},
		"localities/b.yaml": &fstest.MapFile{Data: []byte(`
locality: RJ-B
beneficiaries:
  - id: "B-1"
    name: Second
`)},
	}
	_, err := load(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate beneficiary id")
}

func TestUnknownLookupsMiss(t *testing.T) {
	cat, err := load(fstest.MapFS{})
	require.NoError(t, err)

	_, ok := cat.Locality("missing")
	assert.False(t, ok)
	_, ok = cat.Beneficiary("missing")
	assert.False(t, ok)
}
