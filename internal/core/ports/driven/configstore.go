package driven

// ConfigStore is the persisted user configuration, seen as a flat set of
// dot-notation keys. The TOML table [corpora.bluebook] with path = "b.db"
// appears as the key "corpora.bluebook.path".
//
// Values keep the type the backing format decoded them as (TOML integers
// arrive as int64). Callers convert.
type ConfigStore interface {
	// Lookup returns the raw value stored under key.
	Lookup(key string) (any, bool)

	// Keys lists the stored keys beginning with prefix, sorted.
	Keys(prefix string) []string

	// Set stores value under key and persists it.
	Set(key string, value any) error

	// Unset removes key and persists the result. Removing a missing key
	// is not an error.
	Unset(key string) error
}
