package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gobanner/domain/banner"
	"gobanner/domain/decision"
	"gobanner/internal/errors"
	"gobanner/internal/recode"
)

// Plan is a batch analysis description read from YAML
type Plan struct {
	Title     string          `yaml:"title"`
	Dataset   string          `yaml:"dataset"`
	Labels    string          `yaml:"labels,omitempty"`
	Banner    banner.Spec     `yaml:"banner"`
	Recoding  recode.Config   `yaml:"recoding"`
	Rows      RowSelection    `yaml:"rows"`
	Decisions decision.Record `yaml:"decisions"`
	Output    OutputSelection `yaml:"output"`
}

// RowSelection names extra row variables to tabulate
type RowSelection struct {
	Requested []string `yaml:"requested,omitempty"`
}

// OutputSelection picks which artifacts a batch run writes
type OutputSelection struct {
	Workbook     string `yaml:"workbook,omitempty"`
	Verification string `yaml:"verification,omitempty"`
	Syntax       string `yaml:"syntax,omitempty"`
	Derived      string `yaml:"derived,omitempty"`
	Audit        string `yaml:"audit,omitempty"`
}

// DefaultPlan returns a plan with default banner and recoding rules
func DefaultPlan() Plan {
	return Plan{
		Title:    "Survey Analysis",
		Banner:   banner.NewSpec(),
		Recoding: recode.DefaultConfig(),
	}
}

// ParsePlan decodes a YAML plan over the defaults
func ParsePlan(data []byte) (*Plan, error) {
	plan := DefaultPlan()
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid("plan is not valid YAML"), err.Error())
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// LoadPlan reads and decodes a YAML plan file
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read plan %s", path)
	}
	return ParsePlan(data)
}

// Validate checks recoding rules and decisions
func (p *Plan) Validate() error {
	if p.Recoding.Default.BoxSize < 1 {
		return errors.ConfigInvalid("recoding.default.box_size must be at least 1")
	}
	for name, o := range p.Recoding.Overrides {
		if o.BoxSize < 1 {
			return errors.ConfigInvalid(fmt.Sprintf("recoding.overrides.%s.box_size must be at least 1", name))
		}
	}
	if err := p.Decisions.Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}
