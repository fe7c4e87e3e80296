package domain

import "time"

// VenueType says where a verification takes place for a beneficiary.
type VenueType string

const (
	VenueHome VenueType = "HOME"
	VenueHall VenueType = "HALL"
)

// SyncStatus tracks whether the beneficiary's latest verification state has
// reached the remote system of record.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
)

// CompletionThreshold is the number of independent verification actions
// required to fully close a case: proof-of-life plus a second wakil-assisted
// action, in either order.
const CompletionThreshold = 2

// Beneficiary is the identity and pension state for one pensioner, produced
// by merging the read-only base catalogue entry with the persisted overlay.
type Beneficiary struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	MonthlyPayout int64      `json:"monthlyPayout"`
	PendingMonths int        `json:"pendingMonths"`
	Completed     bool       `json:"completed"`
	Venue         VenueType  `json:"verificationType"`
	SyncStatus    SyncStatus `json:"syncStatus"`
	ReferenceID   string     `json:"referenceId,omitempty"`
	ServiceCount  int        `json:"serviceCount"`
	LocalityID    string     `json:"localityId"`
}

// Overlay is the mutable verification state persisted per beneficiary. The
// base catalogue never changes on device; everything the verification flow
// touches lives here.
type Overlay struct {
	BeneficiaryID string     `json:"beneficiaryId"`
	ServiceCount  int        `json:"serviceCount"`
	Completed     bool       `json:"completed"`
	SyncStatus    SyncStatus `json:"syncStatus"`
	ReferenceID   string     `json:"referenceId,omitempty"`
	Venue         VenueType  `json:"venue,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Merge lays the overlay's verification state over a base catalogue entry.
func Merge(base Beneficiary, overlay Overlay) Beneficiary {
	base.ServiceCount = overlay.ServiceCount
	base.Completed = overlay.Completed
	if overlay.SyncStatus != "" {
		base.SyncStatus = overlay.SyncStatus
	}
	if overlay.ReferenceID != "" {
		base.ReferenceID = overlay.ReferenceID
	}
	if overlay.Venue != "" {
		base.Venue = overlay.Venue
	}
	return base
}
