package banner

import (
	"fmt"

	"gobanner/domain/core"
	"gobanner/domain/survey"
)

// Spec is the user-declared set of banner (grouping) variables
type Spec struct {
	Variables []string `json:"variables" yaml:"variables"`
	// SkipEmpty elides columns with no respondents in the whole dataset
	SkipEmpty bool `json:"skip_empty" yaml:"skip_empty"`
	// IncludeTotal adds a leading column covering every respondent
	IncludeTotal bool `json:"include_total" yaml:"include_total"`
	// Order optionally fixes the category order per banner variable
	Order map[string][]int `json:"order,omitempty" yaml:"order,omitempty"`
}

// NewSpec returns a spec with the default flags
func NewSpec(variables ...string) Spec {
	return Spec{
		Variables:    variables,
		SkipEmpty:    true,
		IncludeTotal: true,
	}
}

// IsEmpty reports whether no banner variable has been chosen
func (s Spec) IsEmpty() bool {
	return len(s.Variables) == 0
}

// Validate checks s against a catalog. Unknown banner variables are fatal.
func (s Spec) Validate(catalog *survey.Catalog) error {
	seen := make(map[string]bool, len(s.Variables))
	for _, name := range s.Variables {
		if seen[name] {
			return fmt.Errorf("%w: banner variable %s listed twice", core.ErrFatalInput, name)
		}
		seen[name] = true
		if catalog.Position(name) < 0 {
			return core.NewBannerNotFoundError(name)
		}
	}
	for name, order := range s.Order {
		if !seen[name] {
			return core.NewValidationError("banner.order", "order given for "+name+" which is not a banner variable")
		}
		dup := make(map[int]bool, len(order))
		for _, code := range order {
			if dup[code] {
				return core.NewValidationError("banner.order", fmt.Sprintf("code %d repeated for %s", code, name))
			}
			dup[code] = true
		}
	}
	return nil
}
