package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors or decisions.
//
//   - ErrNotFound: account record does not exist in the store
//   - ErrConflict: concurrent writer changed the record mid-operation
//   - ErrUnavailable: backing store temporarily unreachable
//   - ErrInvalidState: stored record cannot be decoded
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
