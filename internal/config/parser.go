package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	adperrors "github.com/adp-project/adp/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// DefaultOutDir is the output sub-path used when the spec declares none.
const DefaultOutDir = "out"

// Load reads a pipeline spec from disk, validates it, and returns the
// resulting model with defaults applied.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, adperrors.NewParseError(path, 0, err)
	}

	p, err := Parse(data)
	if err != nil {
		if pe, ok := err.(*adperrors.ParseError); ok {
			pe.Path = path
		}
		return nil, err
	}
	return p, nil
}

// Parse decodes and validates a pipeline spec document.
func Parse(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, adperrors.NewParseError("", extractLine(err), err)
	}

	if p.OutDir == "" {
		p.OutDir = DefaultOutDir
	}

	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}
	return line
}
