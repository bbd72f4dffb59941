package models

// CreateResult is the outcome of the repository's atomic create-if-absent.
// Exactly one field is true.
type CreateResult struct {
	// Created means the reference was appended.
	Created bool
	// Existing means a reference with the same normalized name was already stored.
	Existing bool
	// LimitReached means the set already occupies every allowed slot.
	LimitReached bool
}

// StoreResult is what the reference writer reports to its caller.
type StoreResult struct {
	Stored        bool `json:"stored"`
	Cached        bool `json:"cached,omitempty"`
	AlreadyExists bool `json:"already_exists,omitempty"`
	InProgress    bool `json:"in_progress,omitempty"`
	LimitReached  bool `json:"limit_reached,omitempty"`
}

// Succeeded reports whether the identity is now known to be stored for the account.
func (r StoreResult) Succeeded() bool {
	return r.Stored || r.Cached || r.AlreadyExists
}
