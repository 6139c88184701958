package driven

// ConfigStore holds raw configuration values under flat dot-notation keys
// ("view.zoom"). Values keep the type their backend decoded them as; the
// settings service coerces them.
type ConfigStore interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (any, bool)

	// Set stores value under key and persists it.
	Set(key string, value any) error

	// Keys returns every stored key, sorted.
	Keys() []string

	// Path identifies where the values are persisted.
	Path() string
}
