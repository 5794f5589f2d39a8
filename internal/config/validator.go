package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	adperrors "github.com/adp-project/adp/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

const referenceHint = "declare exactly one of: class, ref, uses"

// RoleSinkName mirrors pipeline.RoleSink without importing the pipeline
// package; config stays a leaf.
const RoleSinkName = "sink"

// Validate checks the structural rules of a pipeline spec. All steps are
// checked before any component is resolved, so spec errors surface before
// anything runs.
func Validate(p *Pipeline) error {
	if err := validate.Struct(p); err != nil {
		return translateFieldError(err)
	}

	hasLegacy := p.Source != nil || p.Sink != nil || len(p.Transform) > 0 || len(p.Transforms) > 0
	if p.UsesSteps() && hasLegacy {
		return adperrors.NewSpecError("", "spec declares both steps and legacy source/transform/sink keys; use one mode")
	}
	if !p.UsesSteps() && !hasLegacy {
		return adperrors.NewSpecError("", "spec declares no pipeline: add a steps list or source/sink keys")
	}

	if p.UsesSteps() {
		return validateSteps(p.Steps)
	}
	return validateLegacy(p)
}

func validateLegacy(p *Pipeline) error {
	if len(p.Transform) > 0 && len(p.Transforms) > 0 {
		return adperrors.NewSpecError("transform", "spec declares both transform and transforms; use one key")
	}

	if p.Source == nil {
		return adperrors.NewSpecError("source", "missing component declaration")
	}
	if err := validateComponent("source", p.Source); err != nil {
		return err
	}

	for i := range p.TransformList() {
		c := p.TransformList()[i]
		if err := validateComponent(fmt.Sprintf("transform[%d]", i), &c); err != nil {
			return err
		}
	}

	if p.Sink == nil {
		return adperrors.NewSpecError("sink", "missing component declaration")
	}
	return validateComponent("sink", p.Sink)
}

func validateSteps(steps []Step) error {
	for i := range steps {
		step := &steps[i]
		if err := validateComponent(step.Label(i), &step.Component); err != nil {
			return err
		}
		// A sink ends the stream; anything after it is undefined and is
		// rejected rather than silently reusing the pre-sink stream.
		if step.Role == RoleSinkName && i != len(steps)-1 {
			return adperrors.NewSpecError(step.Label(i), "sink must be the final step")
		}
	}
	return nil
}

func validateComponent(name string, c *Component) error {
	switch c.referenceCount() {
	case 0:
		return adperrors.NewSpecError(name, "missing component reference; "+referenceHint)
	case 1:
		return nil
	default:
		return adperrors.NewSpecError(name, "ambiguous component reference; "+referenceHint)
	}
}

func translateFieldError(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err
	}
	fe := errs[0]
	return adperrors.NewSpecError(fe.Field(), fmt.Sprintf("invalid value %q (rule: %s)", fmt.Sprint(fe.Value()), fe.Tag()))
}
