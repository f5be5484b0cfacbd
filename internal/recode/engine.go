package recode

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"gobanner/domain/audit"
	"gobanner/domain/survey"
	"gobanner/internal"
)

// MinScalePoints is the smallest substantive code count worth binarizing
const MinScalePoints = 3

// Options selects the box applied to one variable
type Options struct {
	BoxSize   int              `json:"box_size" yaml:"box_size"`
	Direction survey.Direction `json:"direction" yaml:"direction"`
}

// DefaultOptions is top-2-box
func DefaultOptions() Options {
	return Options{BoxSize: 2, Direction: survey.DirectionTop}
}

// Config is the global recoding rule plus per-variable overrides
type Config struct {
	Default   Options            `json:"default" yaml:"default"`
	Overrides map[string]Options `json:"overrides,omitempty" yaml:"overrides,omitempty"`
	// Exclude lists ordinal variables to keep as-is
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// DefaultConfig recodes every ordinal scale to top-2-box
func DefaultConfig() Config {
	return Config{Default: DefaultOptions()}
}

// For returns the options that apply to the named variable
func (c Config) For(name string) Options {
	if o, ok := c.Overrides[name]; ok {
		return o
	}
	return c.Default
}

func (c Config) excluded(name string) bool {
	for _, n := range c.Exclude {
		if n == name {
			return true
		}
	}
	return false
}

// Skip explains why a variable produced no recoded variable
type Skip struct {
	Variable string
	Reason   string
}

// Warning converts the skip into an audit warning
func (s Skip) Warning() audit.Warning {
	return audit.Warning{Kind: audit.RecodeSkip, Variable: s.Variable, Message: s.Reason}
}

// Engine builds top-N/bottom-N box variables
type Engine struct {
	logger  *internal.Logger
	workers int
}

// NewEngine creates an engine; workers bounds the column pass, 0 means unbounded
func NewEngine(logger *internal.Logger, workers int) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{logger: logger, workers: workers}
}

// Recode derives the box variable metadata for an ordinal source
func (e *Engine) Recode(v survey.Variable, opts Options) (survey.RecodedVariable, *Skip) {
	if v.Kind != survey.KindOrdinalScale {
		return survey.RecodedVariable{}, &Skip{Variable: v.Name, Reason: fmt.Sprintf("kind is %s, not an ordinal scale", v.Kind)}
	}
	codes := v.SubstantiveCodes()
	k := len(codes)
	if k < MinScalePoints {
		return survey.RecodedVariable{}, &Skip{Variable: v.Name, Reason: fmt.Sprintf("only %d substantive codes, treat as binary", k)}
	}
	if opts.BoxSize < 1 {
		return survey.RecodedVariable{}, &Skip{Variable: v.Name, Reason: fmt.Sprintf("box size %d is not positive", opts.BoxSize)}
	}
	if opts.BoxSize >= k {
		return survey.RecodedVariable{}, &Skip{Variable: v.Name, Reason: fmt.Sprintf("box size %d covers the whole %d-point scale", opts.BoxSize, k)}
	}

	direction := opts.Direction
	if direction == "" {
		direction = survey.DirectionTop
	}
	minCode, maxCode := codes[0], codes[k-1]

	var threshold int
	var suffix string
	if direction == survey.DirectionBottom {
		threshold = minCode + opts.BoxSize - 1
		suffix = fmt.Sprintf("_bottom%d", opts.BoxSize)
	} else {
		threshold = maxCode - opts.BoxSize + 1
		suffix = fmt.Sprintf("_top%d", opts.BoxSize)
	}
	box := fmt.Sprintf("%s %d Box", direction.Title(), opts.BoxSize)

	return survey.RecodedVariable{
		Variable: survey.Variable{
			Name:         v.Name + suffix,
			Label:        fmt.Sprintf("%s [%s]", v.DisplayLabel(), box),
			CodedValues:  []int{0, 1},
			ValueLabels:  map[int]string{0: "Bottom box", 1: box},
			Kind:         survey.KindBinary,
			MissingCodes: survey.NewMissingCodeSet(),
		},
		Source:      v.Name,
		BoxSize:     opts.BoxSize,
		Direction:   direction,
		Threshold:   threshold,
		ScalePoints: k,
	}, nil
}

// Values maps a source column through a recoded variable's threshold.
// Missing and non-substantive source codes stay missing.
func Values(source survey.Variable, rv survey.RecodedVariable, col survey.Column) survey.Column {
	out := survey.Column{Values: make([]int, col.Len()), Missing: make([]bool, col.Len())}
	for i := range col.Values {
		code, ok := col.At(i)
		if !ok || !source.IsSubstantive(code) {
			out.Missing[i] = true
			continue
		}
		var hit bool
		if rv.Direction == survey.DirectionBottom {
			hit = code <= rv.Threshold
		} else {
			hit = code >= rv.Threshold
		}
		if hit {
			out.Values[i] = 1
		}
	}
	return out
}

// Outcome is the result of a recoding pass
type Outcome struct {
	Dataset  *survey.DerivedDataset
	Skips    []Skip
	Warnings []audit.Warning
}

// Apply recodes every ordinal variable of ds and appends the derived columns in catalog order.
// Non-ordinal variables are ignored silently; excluded ones are skipped without a warning.
func (e *Engine) Apply(ctx context.Context, ds *survey.Dataset, cfg Config) (*Outcome, error) {
	variables := ds.Catalog().Variables()

	type slot struct {
		rv   *survey.RecodedVariable
		col  survey.Column
		skip *Skip
	}
	slots := make([]slot, len(variables))

	g, gctx := errgroup.WithContext(ctx)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}
	for i, v := range variables {
		if v.Kind != survey.KindOrdinalScale || cfg.excluded(v.Name) {
			continue
		}
		i, v := i, v
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rv, skip := e.Recode(v, cfg.For(v.Name))
			if skip != nil {
				slots[i] = slot{skip: skip}
				return nil
			}
			col, _ := ds.Column(v.Name)
			slots[i] = slot{rv: &rv, col: Values(v, rv, col)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Outcome{Dataset: survey.NewDerivedDataset(ds)}
	for _, s := range slots {
		if s.rv != nil {
			if _, exists := ds.Column(s.rv.Name); exists {
				s.skip = &Skip{Variable: s.rv.Source, Reason: fmt.Sprintf("derived name %s is already an input variable", s.rv.Name)}
			}
		}
		switch {
		case s.skip != nil:
			e.logger.Debug("[Recode] skip %s: %s", s.skip.Variable, s.skip.Reason)
			out.Skips = append(out.Skips, *s.skip)
			out.Warnings = append(out.Warnings, s.skip.Warning())
		case s.rv != nil:
			if err := out.Dataset.Append(*s.rv, s.col); err != nil {
				return nil, err
			}
			e.logger.Trace("[Recode] %s -> %s threshold=%d", s.rv.Source, s.rv.Name, s.rv.Threshold)
		}
	}
	e.logger.Info("[Recode] derived %d variables, skipped %d", len(out.Dataset.Derived()), len(out.Skips))
	return out, nil
}
