package app

import (
	"fmt"
	"strings"

	"gobanner/domain/decision"
	"gobanner/domain/survey"
	"gobanner/internal/metadata"
	"gobanner/internal/recode"
	"gobanner/internal/report"
)

// Option ids are "<variable>:<choice>" so an answer can be rebuilt from them.
const optionSeparator = ":"

func optionID(variable, choice string) string {
	return variable + optionSeparator + choice
}

func splitOptionID(id string) (variable, choice string, ok bool) {
	i := strings.LastIndex(id, optionSeparator)
	if i <= 0 {
		return "", "", false
	}
	return id[:i], id[i+1:], true
}

func classificationReview(classes []metadata.Classification, prompt string) *decision.Pending {
	var options []decision.Option
	for _, c := range classes {
		options = append(options, decision.Option{
			ID:          optionID(c.Variable, string(c.Kind)),
			Variable:    c.Variable,
			Label:       fmt.Sprintf("%s as %s", c.Variable, c.Kind),
			Description: c.Reason,
			Recommended: true,
		})
		if c.Kind == survey.KindOrdinalScale && !c.Intensity {
			options = append(options, decision.Option{
				ID:          optionID(c.Variable, string(survey.KindNominal)),
				Variable:    c.Variable,
				Label:       fmt.Sprintf("%s as nominal", c.Variable),
				Description: "codes are rankings or unordered categories",
			})
		}
	}
	return decision.NewPending(decision.KindClassificationReview, prompt, options)
}

func recodingChoice(explorations []metadata.Exploration) *decision.Pending {
	var options []decision.Option
	for _, e := range explorations {
		if e.Classification.Kind != survey.KindOrdinalScale {
			continue
		}
		for _, s := range e.Suggestions {
			options = append(options, decision.Option{
				ID:          optionID(e.Variable, string(s.Method)),
				Variable:    e.Variable,
				Label:       s.Description,
				Description: fmt.Sprintf("%s question, %d-point scale", e.Theme, e.Classification.ScalePoints),
				Recommended: s.Recommended,
			})
		}
	}
	return decision.NewPending(decision.KindRecodingChoice, "Choose how each rating scale is recoded", options)
}

func bannerSelection(ds *survey.Dataset, candidates []string, max int) *decision.Pending {
	options := make([]decision.Option, 0, len(candidates))
	for i, name := range candidates {
		v, _ := ds.Variable(name)
		options = append(options, decision.Option{
			ID:          optionID(name, "banner"),
			Variable:    name,
			Label:       v.DisplayLabel(),
			Description: fmt.Sprintf("%s, %d categories", v.Kind, len(v.SubstantiveCodes())),
			Recommended: max <= 0 || i < max,
		})
	}
	return decision.NewPending(decision.KindBannerSelection, "Choose the banner variables for the column headers", options)
}

func auditApproval(a report.Audit) *decision.Pending {
	prompt := fmt.Sprintf("Approve the data audit: %d respondents, %d variables, %d recoded, %d empty banner columns, %d warnings",
		a.Respondents, a.Originals, a.Recoded, a.EmptyColumns(), len(a.Warnings))
	return decision.NewPending(decision.KindAuditApproval, prompt, []decision.Option{
		{ID: "approve", Label: "Approve and run tabulation", Recommended: true},
	})
}

// recodingConfig layers recoding decisions over the configured rules
func recodingConfig(base recode.Config, record decision.Record) recode.Config {
	cfg := recode.Config{
		Default:   base.Default,
		Overrides: make(map[string]recode.Options, len(base.Overrides)+len(record.Recoding)),
		Exclude:   append([]string(nil), base.Exclude...),
	}
	for name, o := range base.Overrides {
		cfg.Overrides[name] = o
	}
	for name, choice := range record.Recoding {
		if choice.Exclude {
			delete(cfg.Overrides, name)
			cfg.Exclude = append(cfg.Exclude, name)
			continue
		}
		cfg.Overrides[name] = recode.Options{BoxSize: choice.BoxSize, Direction: choice.Direction}
	}
	return cfg
}

// ChoiceFor converts a recoding option id into a recoding choice
func ChoiceFor(optionID string) (string, decision.RecodingChoice, error) {
	variable, method, ok := splitOptionID(optionID)
	if !ok {
		return "", decision.RecodingChoice{}, fmt.Errorf("malformed option id %q", optionID)
	}
	switch metadata.Method(method) {
	case metadata.MethodTop2Box:
		return variable, decision.RecodingChoice{BoxSize: 2, Direction: survey.DirectionTop}, nil
	case metadata.MethodTop3Box:
		return variable, decision.RecodingChoice{BoxSize: 3, Direction: survey.DirectionTop}, nil
	case metadata.MethodAsIs:
		return variable, decision.RecodingChoice{Exclude: true}, nil
	}
	return "", decision.RecodingChoice{}, fmt.Errorf("unknown recoding method %q", method)
}

// Answer builds the record that resolves a pending decision with the chosen option ids.
// With no ids the recommended options are taken.
func Answer(p *decision.Pending, chosen ...string) (decision.Record, error) {
	if len(chosen) == 0 {
		for _, o := range p.Recommended() {
			chosen = append(chosen, o.ID)
		}
	}
	known := make(map[string]decision.Option, len(p.Options))
	for _, o := range p.Options {
		known[o.ID] = o
	}
	for _, id := range chosen {
		if _, ok := known[id]; !ok {
			return decision.Record{}, fmt.Errorf("option %q is not offered by decision %s", id, p.ID)
		}
	}

	var record decision.Record
	switch p.Kind {
	case decision.KindClassificationReview:
		record.ClassificationConfirmed = true
		for _, id := range chosen {
			variable, kind, _ := splitOptionID(id)
			parsed, err := survey.ParseKind(kind)
			if err != nil {
				return decision.Record{}, err
			}
			if record.Kinds == nil {
				record.Kinds = make(map[string]survey.Kind)
			}
			record.Kinds[variable] = parsed
		}
	case decision.KindRecodingChoice:
		record.RecodingConfirmed = true
		for _, id := range chosen {
			variable, choice, err := ChoiceFor(id)
			if err != nil {
				return decision.Record{}, err
			}
			if record.Recoding == nil {
				record.Recoding = make(map[string]decision.RecodingChoice)
			}
			record.Recoding[variable] = choice
		}
	case decision.KindBannerSelection:
		for _, id := range chosen {
			record.Banners = append(record.Banners, known[id].Variable)
		}
	case decision.KindAuditApproval:
		record.AuditApproved = true
	}
	return record, nil
}
