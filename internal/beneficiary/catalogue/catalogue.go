// Package catalogue loads the read-only beneficiary base catalogue shipped
// with the agent. One YAML file per locality, embedded at build time so the
// device never needs connectivity to know who it serves.
package catalogue

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"jeevan/internal/domain"
)

//go:embed localities/*.yaml
var localityFS embed.FS

type localityFile struct {
	Locality      string `yaml:"locality"`
	Name          string `yaml:"name"`
	Beneficiaries []struct {
		ID            string `yaml:"id"`
		Name          string `yaml:"name"`
		Address       string `yaml:"address"`
		MonthlyPayout int64  `yaml:"monthly_payout"`
		PendingMonths int    `yaml:"pending_months"`
		Venue         string `yaml:"venue"`
	} `yaml:"beneficiaries"`
}

// Locality is one administrative zone and its base records.
type Locality struct {
	ID            string
	Name          string
	Beneficiaries []domain.Beneficiary
}

// Catalogue is the full embedded base data set, indexed by locality and by
// beneficiary id.
type Catalogue struct {
	localities map[string]Locality
	byID       map[string]domain.Beneficiary
}

// Load parses the embedded locality files.
func Load() (*Catalogue, error) {
	return load(localityFS)
}

func load(fsys fs.FS) (*Catalogue, error) {
	entries, err := fs.Glob(fsys, "localities/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob localities: %w", err)
	}

	cat := &Catalogue{
		localities: make(map[string]Locality),
		byID:       make(map[string]domain.Beneficiary),
	}
	for _, path := range entries {
		raw, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var file localityFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if strings.TrimSpace(file.Locality) == "" {
			return nil, fmt.Errorf("%s: locality id is required", path)
		}

		loc := Locality{ID: file.Locality, Name: file.Name}
		for _, b := range file.Beneficiaries {
			venue := domain.VenueType(b.Venue)
			if venue == "" {
				venue = domain.VenueHome
			}
			record := domain.Beneficiary{
				ID:            b.ID,
				Name:          b.Name,
				Address:       b.Address,
				MonthlyPayout: b.MonthlyPayout,
				PendingMonths: b.PendingMonths,
				Venue:         venue,
				SyncStatus:    domain.SyncPending,
				LocalityID:    file.Locality,
			}
			if _, dup := cat.byID[record.ID]; dup {
				return nil, fmt.Errorf("%s: duplicate beneficiary id %s", path, record.ID)
			}
			loc.Beneficiaries = append(loc.Beneficiaries, record)
			cat.byID[record.ID] = record
		}
		cat.localities[loc.ID] = loc
	}
	return cat, nil
}

// Locality returns the base records for one locality, catalogue order
// preserved.
func (c *Catalogue) Locality(id string) (Locality, bool) {
	loc, ok := c.localities[id]
	return loc, ok
}

// Beneficiary returns the base record for one beneficiary id.
func (c *Catalogue) Beneficiary(id string) (domain.Beneficiary, bool) {
	record, ok := c.byID[id]
	return record, ok
}

// LocalityIDs returns all known locality ids, sorted.
func (c *Catalogue) LocalityIDs() []string {
	ids := make([]string, 0, len(c.localities))
	for id := range c.localities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
