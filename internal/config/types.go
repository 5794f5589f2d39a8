package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Pipeline represents a full pipeline spec document. A spec declares either
// the legacy source/transform(s)/sink keys or an ordered steps list, never
// both.
type Pipeline struct {
	Name        string     `yaml:"name,omitempty"`
	Description string     `yaml:"description,omitempty"`
	OutDir      string     `yaml:"outdir,omitempty"`
	Preview     *int       `yaml:"preview,omitempty" validate:"omitempty,min=0"`
	State       *StateSpec `yaml:"state,omitempty"`

	Source     *Component    `yaml:"source,omitempty"`
	Transform  ComponentList `yaml:"transform,omitempty"`
	Transforms ComponentList `yaml:"transforms,omitempty"`
	Sink       *Component    `yaml:"sink,omitempty"`

	Steps []Step `yaml:"steps,omitempty" validate:"omitempty,dive"`

	raw map[string]any
}

// UnmarshalYAML decodes the document and additionally captures the raw
// mapping so ConfigMap can expose the non-component portion of the spec.
func (p *Pipeline) UnmarshalYAML(value *yaml.Node) error {
	type rawPipeline Pipeline
	var tmp rawPipeline
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	*p = Pipeline(tmp)

	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	p.raw = raw
	return nil
}

// ConfigMap returns the parsed spec minus the component declarations. This
// is what components see as ctx.Config.
func (p *Pipeline) ConfigMap() map[string]any {
	out := make(map[string]any, len(p.raw))
	for k, v := range p.raw {
		switch k {
		case "source", "transform", "transforms", "sink", "steps":
			continue
		}
		out[k] = v
	}
	return out
}

// TransformList merges the transform and transforms keys into one ordered
// list. Validation guarantees at most one of the keys is present.
func (p *Pipeline) TransformList() []Component {
	if len(p.Transform) > 0 {
		return p.Transform
	}
	return p.Transforms
}

// UsesSteps reports whether the spec is in steps mode.
func (p *Pipeline) UsesSteps() bool {
	return len(p.Steps) > 0
}

// Component declares one pipeline component: a resolver reference plus
// constructor parameters. Exactly one of Class, Ref, Uses must be set;
// the three keys are aliases accepted for spec compatibility.
type Component struct {
	Class  string         `yaml:"class,omitempty"`
	Ref    string         `yaml:"ref,omitempty"`
	Uses   string         `yaml:"uses,omitempty"`
	Params map[string]any `yaml:"params,omitempty"`
}

// Reference returns the declared resolver reference string.
func (c *Component) Reference() string {
	switch {
	case c.Class != "":
		return c.Class
	case c.Ref != "":
		return c.Ref
	default:
		return c.Uses
	}
}

// referenceCount returns how many of the alias keys are set.
func (c *Component) referenceCount() int {
	n := 0
	for _, v := range []string{c.Class, c.Ref, c.Uses} {
		if v != "" {
			n++
		}
	}
	return n
}

// ComponentList decodes either a single component mapping or a sequence of
// them, normalizing both shapes to a list.
type ComponentList []Component

// UnmarshalYAML accepts a mapping or a sequence node.
func (l *ComponentList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		var c Component
		if err := value.Decode(&c); err != nil {
			return err
		}
		*l = ComponentList{c}
		return nil
	case yaml.SequenceNode:
		var cs []Component
		if err := value.Decode(&cs); err != nil {
			return err
		}
		*l = ComponentList(cs)
		return nil
	default:
		return fmt.Errorf("line %d: expected a mapping or a list of mappings", value.Line)
	}
}

// Step is one entry of a steps-mode spec. Role is optional; when declared
// it must match the resolved component's actual capability.
type Step struct {
	ID        string `yaml:"id,omitempty"`
	Role      string `yaml:"role,omitempty" validate:"omitempty,oneof=source transform sink"`
	Component `yaml:",inline"`
}

// Label returns the step's identifier for logs and errors, defaulting to
// its position.
func (s *Step) Label(index int) string {
	if s.ID != "" {
		return s.ID
	}
	return fmt.Sprintf("step[%d]", index)
}

// StateSpec selects and configures a state backend.
type StateSpec struct {
	File  string     `yaml:"file,omitempty"`
	Redis *RedisSpec `yaml:"redis,omitempty"`
}

// RedisSpec configures the Redis state backend.
type RedisSpec struct {
	Addr     string `yaml:"addr" validate:"required"`
	Key      string `yaml:"key,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty" validate:"omitempty,min=0"`
}
