// Package engine executes pipeline specs: it builds the run context,
// resolves every declared component up front, then drives records from the
// source through the transforms into the sink as a single-threaded,
// pull-based stream.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adp-project/adp/internal/config"
	"github.com/adp-project/adp/internal/logger"
	"github.com/adp-project/adp/internal/pipeline"
	"github.com/adp-project/adp/internal/registry"
	"github.com/adp-project/adp/internal/state"
	adperrors "github.com/adp-project/adp/pkg/errors"
)

// DefaultPreview is the number of records logged per stage in steps mode
// when the spec does not set one.
const DefaultPreview = 3

// Options carries caller overrides for a run.
type Options struct {
	// WorkDir is the root for relative paths; "." when empty.
	WorkDir string
	// State overrides the backend the spec would otherwise select.
	State state.State
	// Log is the run logger; a discarding logger when nil.
	Log *logger.Logger
	// StrictState makes a corrupt file-backed state fail the run instead
	// of silently starting empty.
	StrictState bool
	// Preview overrides the per-stage preview size in steps mode.
	// Negative means "use the spec's value or the default".
	Preview int
}

// Run loads a spec file and executes it.
func Run(ctx context.Context, specPath string, opts Options) (*RunSummary, error) {
	spec, err := config.Load(specPath)
	if err != nil {
		return nil, err
	}
	return RunSpec(ctx, spec, opts)
}

// RunSpec executes an already-parsed spec. The spec must have passed
// config.Validate (config.Load guarantees this).
func RunSpec(ctx context.Context, spec *config.Pipeline, opts Options) (*RunSummary, error) {
	started := time.Now()

	rc, cleanup, err := buildContext(spec, opts)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	prog, err := compile(spec)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{
		RunID:    uuid.NewString(),
		Pipeline: spec.Name,
		Started:  started,
	}

	log := rc.Log.WithFields(map[string]any{"run_id": summary.RunID})
	if spec.Name != "" {
		log = log.WithFields(map[string]any{"pipeline": spec.Name})
	}
	log.Info("pipeline run starting")
	if spec.Description != "" {
		log.Debug(spec.Description)
	}

	if prog.legacy != nil {
		err = runLegacy(ctx, rc, log, prog.legacy, summary)
	} else {
		err = runSteps(ctx, rc, log, prog.steps, previewSize(spec, opts), summary)
	}
	summary.Duration = time.Since(started)

	if err != nil {
		log.Error(err, "pipeline run failed")
		return nil, err
	}
	log.Infof("pipeline run complete in %s", summary.Duration.Round(time.Millisecond))
	return summary, nil
}

// Validate resolves every component of a spec without executing anything.
// It surfaces the same spec and resolution errors a run would.
func Validate(specPath string) error {
	spec, err := config.Load(specPath)
	if err != nil {
		return err
	}
	_, err = compile(spec)
	return err
}

func previewSize(spec *config.Pipeline, opts Options) int {
	if opts.Preview >= 0 {
		return opts.Preview
	}
	if spec.Preview != nil {
		return *spec.Preview
	}
	return DefaultPreview
}

// buildContext performs the Loaded -> ContextBuilt transition: output
// directory, state backend, logger and environment snapshot.
func buildContext(spec *config.Pipeline, opts Options) (*pipeline.Context, func(), error) {
	workdir := opts.WorkDir
	if workdir == "" {
		workdir = "."
	}

	outdir := filepath.Join(workdir, spec.OutDir)
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating output directory: %w", err)
	}

	st, cleanup, err := buildState(spec, opts, workdir)
	if err != nil {
		return nil, nil, err
	}

	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}

	rc := &pipeline.Context{
		WorkDir: workdir,
		OutDir:  outdir,
		State:   st,
		Log:     log,
		Config:  spec.ConfigMap(),
		Env:     envSnapshot(),
	}
	return rc, cleanup, nil
}

func buildState(spec *config.Pipeline, opts Options, workdir string) (state.State, func(), error) {
	noop := func() {}

	if opts.State != nil {
		return opts.State, noop, nil
	}
	if spec.State == nil {
		return state.NewMemoryState(), noop, nil
	}

	if spec.State.Redis != nil {
		key := spec.State.Redis.Key
		if key == "" {
			key = "adp:state"
		}
		rs, err := state.NewRedisState(state.RedisOptions{
			Addr:     spec.State.Redis.Addr,
			Password: spec.State.Redis.Password,
			DB:       spec.State.Redis.DB,
			Key:      key,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting state backend: %w", err)
		}
		return rs, func() { rs.Close() }, nil
	}

	path := spec.State.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(workdir, path)
	}
	mode := state.CorruptStartEmpty
	if opts.StrictState {
		mode = state.CorruptFail
	}
	fs, err := state.NewFileState(path, mode)
	if err != nil {
		return nil, nil, err
	}
	return fs, noop, nil
}

func envSnapshot() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// program is the ComponentsResolved form of a spec.
type program struct {
	legacy *legacyProgram
	steps  []compiledStep
}

type legacyProgram struct {
	source     pipeline.Source
	transforms []pipeline.Transform
	sink       pipeline.Sink
}

type compiledStep struct {
	label     string
	role      pipeline.Role
	source    pipeline.Source
	transform pipeline.Transform
	sink      pipeline.Sink
}

// compile resolves and instantiates every declared component before any of
// them runs. Resolution errors and role mismatches surface here.
func compile(spec *config.Pipeline) (*program, error) {
	if spec.UsesSteps() {
		steps, err := compileSteps(spec.Steps)
		if err != nil {
			return nil, err
		}
		return &program{steps: steps}, nil
	}

	lp := &legacyProgram{}

	v, err := instantiate("source", &spec.Source.Component)
	if err != nil {
		return nil, err
	}
	src, ok := v.(pipeline.Source)
	if !ok {
		return nil, roleMismatch("source", pipeline.RoleSource, v)
	}
	lp.source = src

	transforms := spec.TransformList()
	for i := range transforms {
		label := fmt.Sprintf("transform[%d]", i)
		v, err := instantiate(label, &transforms[i])
		if err != nil {
			return nil, err
		}
		tr, ok := v.(pipeline.Transform)
		if !ok {
			return nil, roleMismatch(label, pipeline.RoleTransform, v)
		}
		lp.transforms = append(lp.transforms, tr)
	}

	v, err = instantiate("sink", &spec.Sink.Component)
	if err != nil {
		return nil, err
	}
	snk, ok := v.(pipeline.Sink)
	if !ok {
		return nil, roleMismatch("sink", pipeline.RoleSink, v)
	}
	lp.sink = snk

	return &program{legacy: lp}, nil
}

func compileSteps(steps []config.Step) ([]compiledStep, error) {
	out := make([]compiledStep, 0, len(steps))
	for i := range steps {
		step := &steps[i]
		label := step.Label(i)

		v, err := instantiate(label, &step.Component)
		if err != nil {
			return nil, err
		}

		role, ok := pipeline.RoleOf(v)
		if !ok {
			return nil, adperrors.NewSpecError(label, fmt.Sprintf(
				"unsupported component type %T: not a source, transform or sink", v))
		}
		if step.Role != "" && step.Role != string(role) {
			return nil, adperrors.NewSpecError(label, fmt.Sprintf(
				"declared role %q but component %q is a %s", step.Role, step.Reference(), role))
		}

		cs := compiledStep{label: label, role: role}
		switch role {
		case pipeline.RoleSource:
			cs.source = v.(pipeline.Source)
		case pipeline.RoleTransform:
			cs.transform = v.(pipeline.Transform)
		case pipeline.RoleSink:
			cs.sink = v.(pipeline.Sink)
		}
		out = append(out, cs)
	}

	// A stream is undefined after a sink; reject trailing steps even when
	// the role was only inferred at resolution time.
	for i, cs := range out {
		if cs.role == pipeline.RoleSink && i != len(out)-1 {
			return nil, adperrors.NewSpecError(cs.label, "sink must be the final step")
		}
	}
	return out, nil
}

func instantiate(label string, c *config.Component) (any, error) {
	factory, err := registry.Resolve(c.Reference())
	if err != nil {
		return nil, fmt.Errorf("%s: resolving %q: %w", label, c.Reference(), err)
	}
	v, err := factory(c.Params)
	if err != nil {
		return nil, adperrors.NewSpecError(label, err.Error())
	}
	return v, nil
}

func roleMismatch(label string, want pipeline.Role, v any) error {
	got, ok := pipeline.RoleOf(v)
	if !ok {
		return adperrors.NewSpecError(label, fmt.Sprintf(
			"unsupported component type %T: not a source, transform or sink", v))
	}
	return adperrors.NewSpecError(label, fmt.Sprintf("component is a %s, want %s", got, want))
}

// runLegacy chains source -> transforms -> sink as one lazy pull chain. No
// stage buffers unless it chooses to; record order is preserved end to end.
func runLegacy(ctx context.Context, rc *pipeline.Context, log *logger.Logger, lp *legacyProgram, summary *RunSummary) error {
	counts := make([]int, len(lp.transforms)+2)

	batch, err := lp.source.Run(ctx, rc)
	if err != nil {
		return err
	}
	if batch == nil {
		batch = pipeline.Empty()
	}
	batch = pipeline.Counted(batch, &counts[0])

	for i, tr := range lp.transforms {
		out, err := tr.Run(ctx, rc, batch)
		if err != nil {
			return err
		}
		if out == nil {
			out = pipeline.Empty()
		}
		batch = pipeline.Counted(out, &counts[i+1])
	}

	sinkIn := pipeline.Counted(batch, &counts[len(counts)-1])
	artifact, err := lp.sink.Run(ctx, rc, sinkIn)
	if err != nil {
		return err
	}

	summary.Stages = append(summary.Stages, StageSummary{
		ID: "source", Role: pipeline.RoleSource, Records: counts[0],
	})
	for i := range lp.transforms {
		summary.Stages = append(summary.Stages, StageSummary{
			ID: fmt.Sprintf("transform[%d]", i), Role: pipeline.RoleTransform, Records: counts[i+1],
		})
	}
	summary.Stages = append(summary.Stages, StageSummary{
		ID: "sink", Role: pipeline.RoleSink, Records: counts[len(counts)-1], Artifact: artifact,
	})

	if artifact != "" {
		log.Infof("sink wrote %s", artifact)
	}
	return nil
}

// runSteps dispatches each step by its role. A source replaces the running
// stream; a transform or sink requires one. Previews are taken with a
// bounded peek so streaming is preserved past the logged sample.
func runSteps(ctx context.Context, rc *pipeline.Context, log *logger.Logger, steps []compiledStep, preview int, summary *RunSummary) error {
	var stream pipeline.Batch

	// Stage counters are filled in lazily as downstream stages pull, so
	// record counts are only read once every step has run.
	counts := make([]int, len(steps))

	for i, cs := range steps {
		stage := StageSummary{ID: cs.label, Role: cs.role}
		count := &counts[i]

		switch cs.role {
		case pipeline.RoleSource:
			out, err := cs.source.Run(ctx, rc)
			if err != nil {
				return err
			}
			if out == nil {
				out = pipeline.Empty()
			}
			stream, err = logPreview(log, cs.label, pipeline.Counted(out, count), preview)
			if err != nil {
				return err
			}

		case pipeline.RoleTransform:
			if stream == nil {
				return adperrors.NewOrderingError(cs.label, "transform has no input: no source has produced a stream")
			}
			out, err := cs.transform.Run(ctx, rc, stream)
			if err != nil {
				return err
			}
			if out == nil {
				out = pipeline.Empty()
			}
			stream, err = logPreview(log, cs.label, pipeline.Counted(out, count), preview)
			if err != nil {
				return err
			}

		case pipeline.RoleSink:
			if stream == nil {
				return adperrors.NewOrderingError(cs.label, "sink has no input: no source has produced a stream")
			}
			artifact, err := cs.sink.Run(ctx, rc, pipeline.Counted(stream, count))
			if err != nil {
				return err
			}
			stage.Artifact = artifact
			stream = nil
			if artifact != "" {
				log.Infof("step %s wrote %s", cs.label, artifact)
			}
		}

		summary.Stages = append(summary.Stages, stage)
	}

	for i := range summary.Stages {
		summary.Stages[i].Records = counts[i]
	}
	return nil
}

// logPreview peeks at the head of a stage's output for debug logging and
// returns a stream that still yields every record.
func logPreview(log *logger.Logger, label string, b pipeline.Batch, n int) (pipeline.Batch, error) {
	if n <= 0 {
		return b, nil
	}
	head, rest, err := pipeline.Peek(b, n)
	if err != nil {
		return nil, err
	}
	for i, r := range head {
		log.Debugf("step %s sample[%d]: %v", label, i, r)
	}
	return rest, nil
}
