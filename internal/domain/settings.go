package domain

// Settings are locally persisted client preferences. They outlive a
// single invocation but never leave the device.
type Settings struct {
	SyncEnabled bool `json:"sync_enabled"`
}
