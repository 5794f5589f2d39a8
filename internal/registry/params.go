package registry

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var paramsValidate = validator.New(validator.WithRequiredStructEnabled())

// DecodeParams maps a step's params mapping onto a component's typed config
// struct and validates it. Component factories call this before
// constructing an instance so malformed params fail with the field named.
func DecodeParams(params map[string]any, out any) error {
	if params == nil {
		params = map[string]any{}
	}

	raw, err := yaml.Marshal(params)
	if err != nil {
		return fmt.Errorf("encoding params: %w", err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding params: %w", err)
	}

	if err := paramsValidate.Struct(out); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			fe := errs[0]
			return fmt.Errorf("param %q: failed %q validation", fe.Field(), fe.Tag())
		}
		return err
	}
	return nil
}
