package state

// MemoryState is an ephemeral backend. It is the runner's default when the
// spec declares no state block, and the backend of choice for tests.
type MemoryState struct {
	data map[string]any
}

// NewMemoryState creates an empty in-memory backend.
func NewMemoryState() *MemoryState {
	return &MemoryState{data: make(map[string]any)}
}

// Get returns the stored value for key.
func (s *MemoryState) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Set stores value under key.
func (s *MemoryState) Set(key string, value any) {
	s.data[key] = value
}

// Save is a no-op; memory-only state is never persisted.
func (s *MemoryState) Save() error {
	return nil
}

var _ State = (*MemoryState)(nil)
