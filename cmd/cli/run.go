package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gobanner/adapters/excel"
	"gobanner/app"
	"gobanner/domain/survey"
	"gobanner/internal"
	"gobanner/internal/config"
	"gobanner/internal/verification"
)

// maxResumes bounds automatic answers; a run has at most four confirmation points
const maxResumes = 8

// runOptions are the persistent flags shared by every command
type runOptions struct {
	dataPath          string
	labelsPath        string
	planPath          string
	banners           []string
	rows              []string
	acceptRecommended bool
	format            string

	plan *config.Plan
}

type outputPaths = config.OutputSelection

// loadPlan merges the plan file, environment settings and flags
func (o *runOptions) loadPlan(settings config.PipelineSettings) (*config.Plan, error) {
	plan := config.DefaultPlan()
	plan.Banner.SkipEmpty = settings.SkipEmptyBanners
	plan.Banner.IncludeTotal = settings.IncludeTotal
	if o.planPath != "" {
		loaded, err := config.LoadPlan(o.planPath)
		if err != nil {
			return nil, err
		}
		plan = *loaded
		if plan.Dataset != "" && !filepath.IsAbs(plan.Dataset) {
			plan.Dataset = filepath.Join(filepath.Dir(o.planPath), plan.Dataset)
		}
		if plan.Labels != "" && !filepath.IsAbs(plan.Labels) {
			plan.Labels = filepath.Join(filepath.Dir(o.planPath), plan.Labels)
		}
	}
	if o.dataPath != "" {
		plan.Dataset = o.dataPath
	}
	if o.labelsPath != "" {
		plan.Labels = o.labelsPath
	}
	if len(o.banners) > 0 {
		plan.Banner.Variables = o.banners
	}
	if len(o.rows) > 0 {
		plan.Rows.Requested = o.rows
	}
	if plan.Dataset == "" {
		return nil, fmt.Errorf("no survey data: pass --data or set dataset in the plan")
	}
	return &plan, nil
}

// pipelineConfig layers the plan over the environment settings
func (o *runOptions) pipelineConfig(settings config.PipelineSettings, plan *config.Plan) (app.PipelineConfig, error) {
	cfg, err := app.PipelineConfigFromSettings(settings)
	if err != nil {
		return cfg, err
	}
	if o.planPath != "" {
		cfg.Recoding = plan.Recoding
	}
	if plan.Title != "" {
		cfg.Title = plan.Title
	}
	cfg.RequestedRows = plan.Rows.Requested
	return cfg, cfg.Validate()
}

// execute runs the pipeline until ready reports the needed output is present.
// Suspensions are answered with the recommended options when allowed; otherwise
// the pending decision is printed and returned as an error.
func (o *runOptions) execute(ctx context.Context, stderr io.Writer, ready func(*app.Result) bool) (*app.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	plan, err := o.loadPlan(cfg.Pipeline)
	if err != nil {
		return nil, err
	}
	o.plan = plan
	pcfg, err := o.pipelineConfig(cfg.Pipeline, plan)
	if err != nil {
		return nil, err
	}

	reader := excel.NewDataReader(plan.Dataset)
	if plan.Labels != "" {
		reader = reader.WithLabels(plan.Labels)
	}
	ds, err := reader.ReadDataset(ctx)
	if err != nil {
		return nil, err
	}

	logger := internal.NewDefaultLogger()
	pipeline := app.NewPipeline(pcfg, logger)
	req := app.Request{Dataset: ds, Banner: plan.Banner, Decisions: plan.Decisions}

	for i := 0; ; i++ {
		res, err := pipeline.Run(ctx, req)
		if err != nil {
			return nil, err
		}
		if ready(res) || !res.Suspended() {
			return res, nil
		}
		if !o.acceptRecommended || i >= maxResumes {
			renderPending(stderr, res.Pending)
			return nil, fmt.Errorf("run suspended at %s: answer it in the plan's decisions or pass --accept-recommended", res.Pending.Kind)
		}
		answer, err := app.Answer(res.Pending)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(stderr, "Accepted recommended %s\n", res.Pending.Kind)
		req.Decisions = req.Decisions.Merge(answer)
	}
}

// outputs fills unset flag paths from the plan
func (o *runOptions) outputs(flags outputPaths) outputPaths {
	out := flags
	if o.plan == nil {
		return out
	}
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&out.Workbook, o.plan.Output.Workbook)
	fill(&out.Verification, o.plan.Output.Verification)
	fill(&out.Syntax, o.plan.Output.Syntax)
	fill(&out.Derived, o.plan.Output.Derived)
	fill(&out.Audit, o.plan.Output.Audit)
	return out
}

// render writes v as JSON when --format json, otherwise calls text
func (o *runOptions) render(w io.Writer, v interface{}, text func() error) error {
	switch o.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "table", "":
		return text()
	}
	return fmt.Errorf("unknown format %q", o.format)
}

func writeOutputs(out outputPaths, res *app.Result) error {
	if out.Workbook != "" {
		if err := excel.NewWorkbookWriter(nil).WriteFile(out.Workbook, *res.Table, *res.Verification); err != nil {
			return err
		}
	}
	if out.Verification != "" {
		data, err := res.Verification.YAML()
		if err != nil {
			return err
		}
		if err := os.WriteFile(out.Verification, data, 0o644); err != nil {
			return fmt.Errorf("failed to write verification document: %w", err)
		}
	}
	if out.Syntax != "" {
		if err := os.WriteFile(out.Syntax, []byte(syntaxOf(*res.Verification)), 0o644); err != nil {
			return fmt.Errorf("failed to write syntax: %w", err)
		}
	}
	if out.Derived != "" {
		if err := writeJSONFile(out.Derived, res.Derived.Document()); err != nil {
			return err
		}
	}
	if out.Audit != "" && res.Audit != nil {
		data := res.Audit.HTML()
		if strings.EqualFold(filepath.Ext(out.Audit), ".md") {
			data = []byte(res.Audit.Markdown())
		}
		if err := os.WriteFile(out.Audit, data, 0o644); err != nil {
			return fmt.Errorf("failed to write audit report: %w", err)
		}
	}
	return nil
}

func writeJSONFile(path string, doc survey.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func syntaxOf(doc verification.Document) string {
	return verification.RenderCTABLES(doc)
}
