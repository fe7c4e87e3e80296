package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers
// return these (optionally wrapped) so services can translate them into domain
// errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrCorrupt: persisted collection failed to decode (recovered as empty)
// - ErrStorageFull: durable write rejected by the device (quota/disk)
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: remote system or resource temporarily unreachable
var (
	ErrNotFound     = errors.New("not found")
	ErrCorrupt      = errors.New("corrupt")
	ErrStorageFull  = errors.New("storage full")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
