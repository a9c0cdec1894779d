package system

// Store persists the single operational settings row.
type Store interface {
	// GetSettings returns the settings row, creating it on first use.
	GetSettings() (*Settings, error)
	SaveSettings(*Settings) error
}
