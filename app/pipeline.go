package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gobanner/adapters/stats/significance"
	"gobanner/domain/audit"
	"gobanner/domain/banner"
	"gobanner/domain/core"
	"gobanner/domain/decision"
	"gobanner/domain/stage"
	"gobanner/domain/survey"
	"gobanner/internal"
	"gobanner/internal/crosstab"
	"gobanner/internal/errors"
	"gobanner/internal/metadata"
	"gobanner/internal/recode"
	"gobanner/internal/report"
	"gobanner/internal/tables"
	"gobanner/internal/verification"
	"gobanner/ports"
)

// Request is one pipeline invocation. A suspended run is resumed by sending
// the same request again with the pending decision answered in Decisions.
type Request struct {
	RunID     core.RunID
	Dataset   *survey.Dataset
	Banner    banner.Spec
	Decisions decision.Record

	// Recoding replaces the configured recoding rules for this run when set
	Recoding *recode.Config
	// RequestedRows replaces the configured requested rows when not empty
	RequestedRows []string
}

// Result is everything a run produced. When Pending is set the run stopped at
// a confirmation point and only the outputs of earlier stages are filled in.
type Result struct {
	RunID           core.RunID                  `json:"run_id"`
	Pending         *decision.Pending           `json:"pending,omitempty"`
	Classifications []metadata.Classification   `json:"classifications"`
	Exploration     []metadata.Exploration      `json:"exploration,omitempty"`
	Banner          banner.Spec                 `json:"banner"`
	Derived         *survey.DerivedDataset      `json:"-"`
	Layout          crosstab.Layout             `json:"layout"`
	Rows            []tables.Entry              `json:"-"`
	Audit           *report.Audit               `json:"audit,omitempty"`
	Table           *banner.Table               `json:"table,omitempty"`
	Significance    []banner.SignificanceResult `json:"significance,omitempty"`
	Verification    *verification.Document      `json:"verification,omitempty"`
	Warnings        []audit.Warning             `json:"warnings"`
	Stages          *stage.PipelineResult       `json:"stages"`
}

// Suspended reports whether the run is waiting on a decision
func (r *Result) Suspended() bool {
	return r.Pending != nil
}

// Pipeline runs metadata, recoding, banner, tabulation and assembly stages
type Pipeline struct {
	config     PipelineConfig
	logger     *internal.Logger
	classifier *metadata.Classifier
	recoder    *recode.Engine
	tester     ports.SignificanceTester
}

// NewPipeline creates a pipeline with the chi-square tester configured from cfg
func NewPipeline(cfg PipelineConfig, logger *internal.Logger) *Pipeline {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	tester := significance.NewChiSquareTester()
	tester.Alpha = cfg.Alpha
	tester.MarginalAlpha = cfg.MarginalAlpha
	tester.Yates = cfg.Yates

	return &Pipeline{
		config:     cfg,
		logger:     logger,
		classifier: metadata.NewClassifier(),
		recoder:    recode.NewEngine(logger, cfg.Workers),
		tester:     tester,
	}
}

// WithTester replaces the significance tester
func (p *Pipeline) WithTester(t ports.SignificanceTester) *Pipeline {
	p.tester = t
	return p
}

// Config returns the pipeline configuration
func (p *Pipeline) Config() PipelineConfig {
	return p.config
}

// runState carries intermediate outputs between stages
type runState struct {
	cfg        PipelineConfig
	req        Request
	res        *Result
	log        *internal.Logger
	warnings   audit.Log
	analysis   []metadata.Result
	classified *survey.Dataset
	cellsets   map[tables.Key]tables.Cellset
}

// Run executes the pipeline. Fatal input aborts with a FATAL_INPUT error and no
// partial output; every other condition is collected as a warning.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	cfg := p.config.forRequest(req)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if req.Dataset == nil {
		return nil, errors.FatalInput(core.ErrEmptyCatalog)
	}
	if err := req.Decisions.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	if req.RunID == "" {
		req.RunID = core.NewRunID()
	}

	st := &runState{
		cfg: cfg,
		req: req,
		res: &Result{
			RunID:  req.RunID,
			Banner: req.Banner,
			Stages: stage.NewPipelineResult(req.RunID),
		},
		log: p.logger.With("run_id", req.RunID.String()),
	}
	st.log.Info("[Pipeline] run started: %d variables, %d respondents",
		req.Dataset.Catalog().Len(), req.Dataset.RowCount())

	steps := []struct {
		name stage.StageName
		fn   func(context.Context, *runState, *stage.StageResult) error
	}{
		{stage.StageResolveMissing, p.resolveMissing},
		{stage.StageClassify, p.classify},
		{stage.StageRecode, p.recode},
		{stage.StageBannerColumns, p.bannerColumns},
		{stage.StageAuditReview, p.auditReview},
		{stage.StageTabulate, p.tabulateStage},
		{stage.StageAssemble, p.assemble},
		{stage.StageVerification, p.verify},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.runStage(ctx, st, step.name, step.fn); err != nil {
			return nil, p.classifyError(step.name, err)
		}
		if st.res.Suspended() {
			st.res.Warnings = st.warnings.Warnings()
			st.log.Info("[Pipeline] suspended at %s waiting for %s", step.name, st.res.Pending.Kind)
			return st.res, nil
		}
	}

	st.res.Warnings = st.warnings.Warnings()
	st.log.Info("[Pipeline] run completed: %d rows, %d columns, %d warnings",
		len(st.res.Table.Rows), len(st.res.Table.Columns), len(st.res.Warnings))
	return st.res, nil
}

func (p *Pipeline) runStage(ctx context.Context, st *runState, name stage.StageName, fn func(context.Context, *runState, *stage.StageResult) error) error {
	start := time.Now()
	sr := stage.NewStageResult(name, st.res.RunID)

	err := fn(ctx, st, &sr)

	sr.Duration = time.Since(start).Milliseconds()
	sr.Suspended = st.res.Suspended()
	sr.Success = err == nil
	if err != nil {
		sr.Error = err.Error()
	}
	st.res.Stages.AddResult(sr)
	st.log.Debug("[Pipeline] stage %s finished in %dms (processed=%d skipped=%d)",
		name, sr.Duration, sr.Metrics.ProcessedCount, sr.Metrics.SkippedCount)
	return err
}

func (p *Pipeline) classifyError(name stage.StageName, err error) error {
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	case core.IsFatalInputError(err):
		return errors.FatalInput(err)
	case errors.IsAppError(err):
		return err
	}
	return errors.Wrapf(err, "stage %s failed", name)
}

func (p *Pipeline) suspend(st *runState, pending *decision.Pending) {
	st.res.Pending = pending
}

func (p *Pipeline) resolveMissing(ctx context.Context, st *runState, sr *stage.StageResult) error {
	results, err := metadata.Analyze(ctx, st.req.Dataset.Catalog().Variables(), st.req.Decisions.Kinds, p.classifier, st.cfg.Workers)
	if err != nil {
		return err
	}
	st.analysis = results

	withMissing := 0
	for _, r := range results {
		if len(r.Variable.MissingCodes) > 0 {
			withMissing++
		}
	}
	sr.Metrics.ProcessedCount = len(results)
	sr.Metrics.SuccessCount = withMissing
	sr.Metrics.Custom = map[string]interface{}{"variables_with_missing_codes": withMissing}
	return nil
}

func (p *Pipeline) classify(ctx context.Context, st *runState, sr *stage.StageResult) error {
	kinds := make(map[string]interface{})
	variables := make([]survey.Variable, len(st.analysis))
	var ambiguous []metadata.Classification

	for i, r := range st.analysis {
		variables[i] = r.Variable
		st.res.Classifications = append(st.res.Classifications, r.Classification)
		kinds[string(r.Classification.Kind)] = countOf(kinds[string(r.Classification.Kind)]) + 1

		if w, ok := r.Classification.Warning(); ok {
			st.warnings.Add(w)
			sr.Skip(string(audit.ClassificationAmbiguity), w.String())
			if r.Classification.Kind == survey.KindOrdinalScale {
				ambiguous = append(ambiguous, r.Classification)
			}
		}
	}
	sr.Metrics.ProcessedCount = len(variables)
	sr.Metrics.SuccessCount = len(variables) - len(ambiguous)
	sr.Metrics.Custom = kinds

	catalog, err := st.req.Dataset.Catalog().Replace(variables)
	if err != nil {
		return err
	}
	classified, err := st.req.Dataset.WithCatalog(catalog)
	if err != nil {
		return err
	}
	st.classified = classified
	st.res.Exploration = metadata.Explore(st.analysis)

	if st.req.Decisions.ClassificationConfirmed {
		return nil
	}
	if st.cfg.RequireClassificationReview {
		p.suspend(st, classificationReview(st.res.Classifications, "Confirm the variable classification"))
		return nil
	}
	if len(ambiguous) > 0 {
		p.suspend(st, classificationReview(ambiguous,
			fmt.Sprintf("%d variables were classified as ordinal scales from consecutive codes alone; confirm or override", len(ambiguous))))
	}
	return nil
}

func (p *Pipeline) recode(ctx context.Context, st *runState, sr *stage.StageResult) error {
	if st.cfg.RequireRecodeConfirmation && !st.req.Decisions.RecodingConfirmed {
		p.suspend(st, recodingChoice(st.res.Exploration))
		return nil
	}

	outcome, err := p.recoder.Apply(ctx, st.classified, recodingConfig(st.cfg.Recoding, st.req.Decisions))
	if err != nil {
		return err
	}
	st.res.Derived = outcome.Dataset
	st.warnings.Add(outcome.Warnings...)

	for _, w := range outcome.Warnings {
		sr.Skip(string(w.Kind), w.String())
	}
	sr.Metrics.SuccessCount = len(outcome.Dataset.Derived())
	sr.Metrics.ProcessedCount = sr.Metrics.SuccessCount + len(outcome.Skips)
	return nil
}

func (p *Pipeline) bannerColumns(ctx context.Context, st *runState, sr *stage.StageResult) error {
	spec := st.req.Banner
	if spec.IsEmpty() && len(st.req.Decisions.Banners) > 0 {
		spec.Variables = append([]string(nil), st.req.Decisions.Banners...)
	}
	if spec.IsEmpty() {
		candidates := metadata.BannerCandidates(st.analysis)
		if len(candidates) > 0 {
			p.suspend(st, bannerSelection(st.classified, candidates, st.cfg.MaxSuggestedBanners))
			return nil
		}
		st.log.Warn("[Pipeline] no banner variables chosen and no candidates found; tabulating Total only")
	}

	if err := spec.Validate(st.classified.Catalog()); err != nil {
		return err
	}
	st.res.Banner = spec

	layout, warnings, err := crosstab.BuildColumns(st.res.Derived, spec)
	if err != nil {
		return err
	}
	st.res.Layout = layout
	st.warnings.Add(warnings...)

	for _, w := range warnings {
		sr.Skip(string(w.Kind), w.String())
	}
	sr.Metrics.ProcessedCount = len(layout.Columns())
	sr.Metrics.SuccessCount = len(layout.Columns()) - len(warnings)
	return nil
}

func (p *Pipeline) auditReview(ctx context.Context, st *runState, sr *stage.StageResult) error {
	rows, err := p.rowOrder(st)
	if err != nil {
		return err
	}
	st.res.Rows = rows

	a, err := report.BuildAudit(st.res.Derived, st.res.Layout, rows, st.warnings.Warnings())
	if err != nil {
		return err
	}
	st.res.Audit = &a
	sr.Metrics.ProcessedCount = len(rows)

	if st.cfg.RequireAuditApproval && !st.req.Decisions.AuditApproved {
		p.suspend(st, auditApproval(a))
	}
	return nil
}

func (p *Pipeline) rowOrder(st *runState) ([]tables.Entry, error) {
	for _, name := range st.cfg.RequestedRows {
		if _, ok := st.res.Derived.Variable(name); !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("requested row variable %s does not exist", name))
		}
	}
	opts := tables.RowOptions{Requested: st.cfg.RequestedRows}
	if st.cfg.ExcludeBannerRows {
		opts.Exclude = st.res.Banner.Variables
	}
	return tables.Order(st.res.Derived.Originals(), st.res.Derived.Derived(), opts), nil
}

func (p *Pipeline) tabulateStage(ctx context.Context, st *runState, sr *stage.StageResult) error {
	items := WorkItems(st.res.Rows, st.res.Layout)
	outputs, err := p.tabulate(ctx, items, st.res.Derived)
	if err != nil {
		return err
	}

	cellsets := make(map[tables.Key]tables.Cellset, len(outputs))
	tested := 0
	for i, out := range outputs {
		cellsets[items[i].Key()] = out.Cellset
		st.warnings.Add(out.Warnings...)
		if out.Cellset.Significance != nil {
			tested++
		}
		for _, w := range out.Warnings {
			sr.Skip(string(w.Kind), "")
		}
	}
	st.cellsets = cellsets

	sr.Metrics.ProcessedCount = len(items)
	sr.Metrics.SuccessCount = len(outputs)
	sr.Metrics.Custom = map[string]interface{}{"significance_tests": tested}
	if tested > 0 {
		st.log.Debug("[Pipeline] %d %s tests over %d work items", tested, p.tester.Name(), len(items))
	}
	return nil
}

func (p *Pipeline) assemble(ctx context.Context, st *runState, sr *stage.StageResult) error {
	table, err := tables.Assemble(st.res.Rows, st.res.Layout, st.cellsets, tables.Options{
		SkipEmpty:     st.res.Banner.SkipEmpty,
		IncludeCounts: st.cfg.IncludeCounts,
	})
	if err != nil {
		return err
	}
	st.res.Table = &table
	st.res.Significance = table.Significance()

	sr.Metrics.ProcessedCount = len(table.Rows)
	sr.Metrics.SuccessCount = len(table.Rows)
	sr.Metrics.SkippedCount = len(table.ElidedColumns)
	return nil
}

func (p *Pipeline) verify(ctx context.Context, st *runState, sr *stage.StageResult) error {
	doc := verification.Build(st.cfg.Title, st.res.Rows, st.res.Derived.Derived(), st.res.Banner.Variables, st.cfg.Significance)
	st.res.Verification = &doc
	sr.Metrics.ProcessedCount = len(doc.Requests)
	sr.Metrics.SuccessCount = len(doc.Requests)
	return nil
}

func countOf(v interface{}) int {
	n, _ := v.(int)
	return n
}
