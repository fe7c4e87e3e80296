package domain

import "time"

// ActionType distinguishes the two verification actions the agent performs.
type ActionType string

const (
	ActionProofOfLife      ActionType = "PROOF_OF_LIFE"
	ActionWakilAppointment ActionType = "WAKIL_APPOINTMENT"
)

// Representative identifies a wakil acting on a beneficiary's behalf.
type Representative struct {
	Name       string `json:"name"`
	NationalID string `json:"nationalId"`
	Relation   string `json:"relation,omitempty"`
}

// SubmissionPayload is the beneficiary snapshot carried by a submission,
// plus the representative's identity for wakil actions.
type SubmissionPayload struct {
	Beneficiary    Beneficiary     `json:"beneficiary"`
	Representative *Representative `json:"representative,omitempty"`
}

// Submission is one unit of work awaiting upload. It lives in the queue
// collection until a successful sync migrates it, SyncedAt stamped, into the
// history collection.
type Submission struct {
	BeneficiaryID string            `json:"beneficiaryId"`
	LocalityID    string            `json:"localityId"`
	Timestamp     time.Time         `json:"timestamp"`
	Type          ActionType        `json:"type"`
	Payload       SubmissionPayload `json:"payload"`
	Token         string            `json:"token"`
	ReferenceID   string            `json:"referenceId"`
	SyncedAt      *time.Time        `json:"syncedAt,omitempty"`
}
