package metadata

import (
	"context"

	"golang.org/x/sync/errgroup"

	"gobanner/domain/survey"
)

// Result is the metadata pass output for one variable
type Result struct {
	Variable       survey.Variable
	Classification Classification
}

// Analyze resolves missing codes and classifies every variable in parallel.
// Each worker writes only its own slot, so results keep catalog order.
func Analyze(ctx context.Context, variables []survey.Variable, overrides map[string]survey.Kind, classifier *Classifier, workers int) ([]Result, error) {
	if classifier == nil {
		classifier = NewClassifier()
	}
	results := make([]Result, len(variables))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range variables {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v := variables[i].WithMissingCodes(ResolveMissingCodes(variables[i].ValueLabels))
			class := classifier.ClassifyWithOverride(v, overrides)
			results[i] = Result{Variable: v.WithKind(class.Kind), Classification: class}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BannerCandidates returns the names of variables suitable as banners, in order
func BannerCandidates(results []Result) []string {
	var out []string
	for _, r := range results {
		if r.Classification.BannerCandidate {
			out = append(out, r.Variable.Name)
		}
	}
	return out
}
