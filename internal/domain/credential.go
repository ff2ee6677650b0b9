package domain

import "time"

// Credential is a registry record for a registered user. It lives in the
// credential registry keyed by the derived user id, disjoint from the
// bookmark document stored under the same identity.
type Credential struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the locally-recorded identity of the active user. It is
// persisted so the session survives a process restart, and is
// independent of the document's sync state.
type Session struct {
	Username string    `json:"username"`
	UserID   string    `json:"user_id"`
	LoginAt  time.Time `json:"login_at"`
}
