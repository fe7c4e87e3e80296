package domain

import "time"

// RecordStatus is the lifecycle state of a vault record. FAILED is reserved
// for unrecoverable upload errors; no current path sets it, but the state is
// part of the contract.
type RecordStatus string

const (
	RecordPendingSync RecordStatus = "PENDING_SYNC"
	RecordSynced      RecordStatus = "SYNCED"
	RecordFailed      RecordStatus = "FAILED"
)

// SecureRecord is one tamper-evident evidence entry. The vault is
// append-only: records are never deleted, only their status transitions.
type SecureRecord struct {
	ID               string       `json:"id"`
	Timestamp        time.Time    `json:"timestamp"`
	Status           RecordStatus `json:"status"`
	EncryptedPayload []byte       `json:"encryptedPayload"`
}

// EvidencePayload is the minimal plaintext subset sealed into a vault record.
type EvidencePayload struct {
	BeneficiaryID  string `json:"beneficiaryId"`
	Name           string `json:"name"`
	PhotoRef       string `json:"photoRef,omitempty"`
	BiometricMatch bool   `json:"biometricMatch"`
	ReferenceID    string `json:"referenceId"`
}
