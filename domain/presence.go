package domain

// ConnectionID identifies one live transport session for its lifetime.
// It is process-local and never persisted.
type ConnectionID string

// PresenceEntry ties a live connection to the identity it announced.
// Several connections may carry the same identity (multi-device); each
// gets its own entry keyed by connection id.
type PresenceEntry struct {
	Identity     Identity     `json:"identity"`
	DisplayName  string       `json:"displayName"`
	ConnectionID ConnectionID `json:"-"`
}
