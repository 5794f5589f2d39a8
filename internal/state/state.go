// Package state provides the key/value backends pipelines use for
// incremental markers, cursors and etags. Values must be JSON-serializable.
package state

// State is the contract shared by every backend. Set followed by Get of the
// same key returns the just-set value; persistence only happens on Save.
type State interface {
	// Get returns the stored value for key and whether it was present.
	Get(key string) (any, bool)
	// Set stores value under key in memory.
	Set(key string, value any)
	// Save persists the in-memory map. A crash between Set and Save loses
	// the unsaved mutation; no durability beyond Save is promised.
	Save() error
}

// GetDefault returns the stored value for key, or def when absent.
func GetDefault(s State, key string, def any) any {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}
