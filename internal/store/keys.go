package store

// Key prefixes partition the database into the stores the system
// needs: per-user documents, the credential registry, the single
// session marker, and the client settings record. Documents and
// credentials are namespaced by the derived user id so users never see
// each other's keys.
const (
	documentPrefix   = "doc:"
	credentialPrefix = "cred:"
	sessionKey       = "session"
	settingsKey      = "settings"
)

// DocumentKey returns the storage key for a user's bookmark document.
func DocumentKey(userID string) string {
	return documentPrefix + userID
}

// CredentialKey returns the storage key for a user's credential record.
func CredentialKey(userID string) string {
	return credentialPrefix + userID
}

// SessionKey returns the storage key for the local session marker.
func SessionKey() string {
	return sessionKey
}

// SettingsKey returns the storage key for the client settings record.
func SettingsKey() string {
	return settingsKey
}
