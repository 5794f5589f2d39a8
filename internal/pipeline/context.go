package pipeline

import (
	"github.com/adp-project/adp/internal/logger"
	"github.com/adp-project/adp/internal/state"
)

// Context bundles the per-run environment handed to every component call.
// The same instance is shared, read-mostly, by every Source, Transform and
// Sink within one run; it is discarded when the run completes.
type Context struct {
	// WorkDir is the root for relative paths.
	WorkDir string
	// OutDir is where sinks write their artifacts.
	OutDir string
	// State is the run's key/value backend.
	State state.State
	// Log is the run's logger.
	Log *logger.Logger
	// Config holds the parsed pipeline spec minus component declarations.
	Config map[string]any
	// Env is a snapshot of process environment variables taken when the
	// context was built. Later changes to the process environment are not
	// visible to the run.
	Env map[string]string
}
