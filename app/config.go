package app

import (
	"fmt"

	"gobanner/domain/survey"
	"gobanner/internal/config"
	"gobanner/internal/errors"
	"gobanner/internal/recode"
)

// PipelineConfig holds the global rules of a run. Every field has a stated
// default in DefaultPipelineConfig.
type PipelineConfig struct {
	// Title heads the verification document
	Title string

	// Recoding is the global box rule plus per-variable overrides
	Recoding recode.Config

	// Significance runs a chi-square test per row variable and banner variable
	Significance  bool
	Alpha         float64
	MarginalAlpha float64
	// Yates applies the continuity correction to 2x2 tables
	Yates bool

	// IncludeCounts asks renderers to show counts next to percentages
	IncludeCounts bool

	// RequestedRows adds numeric or unclassified variables as table rows
	RequestedRows []string
	// ExcludeBannerRows keeps banner variables out of the row list
	ExcludeBannerRows bool

	// Workers bounds every parallel pass; 0 means unbounded
	Workers int

	RequireClassificationReview bool
	RequireRecodeConfirmation   bool
	RequireAuditApproval        bool

	// MaxSuggestedBanners caps pre-selected options of a banner selection
	MaxSuggestedBanners int
}

// DefaultPipelineConfig returns the defaults: top-2-box, tests on at .05/.10,
// no Yates correction, banner variables excluded from rows, no forced reviews.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Title:               "Survey Analysis",
		Recoding:            recode.DefaultConfig(),
		Significance:        true,
		Alpha:               0.05,
		MarginalAlpha:       0.10,
		ExcludeBannerRows:   true,
		Workers:             4,
		MaxSuggestedBanners: 5,
	}
}

// PipelineConfigFromSettings builds a pipeline config from environment settings
func PipelineConfigFromSettings(s config.PipelineSettings) (PipelineConfig, error) {
	if err := s.Validate(); err != nil {
		return PipelineConfig{}, err
	}
	direction, err := survey.ParseDirection(s.Direction)
	if err != nil {
		return PipelineConfig{}, errors.ConfigInvalid(err.Error())
	}

	cfg := DefaultPipelineConfig()
	cfg.Recoding.Default = recode.Options{BoxSize: s.BoxSize, Direction: direction}
	cfg.Alpha = s.Alpha
	cfg.MarginalAlpha = s.MarginalAlpha
	cfg.Yates = s.Yates
	cfg.IncludeCounts = s.IncludeCounts
	cfg.Workers = s.Workers
	cfg.RequireClassificationReview = s.RequireClassificationReview
	cfg.RequireRecodeConfirmation = s.RequireRecodeConfirmation
	cfg.RequireAuditApproval = s.RequireAuditApproval
	if s.MaxSuggestedBanners > 0 {
		cfg.MaxSuggestedBanners = s.MaxSuggestedBanners
	}
	return cfg, nil
}

// Validate checks the config
func (c PipelineConfig) Validate() error {
	if c.Recoding.Default.BoxSize < 1 {
		return errors.ConfigInvalid("recoding box size must be at least 1")
	}
	if _, err := survey.ParseDirection(string(c.Recoding.Default.Direction)); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if c.Significance && (c.Alpha <= 0 || c.Alpha >= 1 || c.MarginalAlpha < c.Alpha || c.MarginalAlpha >= 1) {
		return errors.ConfigInvalid(fmt.Sprintf("significance bands %.3f/%.3f are invalid", c.Alpha, c.MarginalAlpha))
	}
	if c.Workers < 0 {
		return errors.ConfigInvalid("workers cannot be negative")
	}
	return nil
}

// forRequest applies the per-run recoding and row overlays of req
func (c PipelineConfig) forRequest(req Request) PipelineConfig {
	if req.Recoding != nil {
		c.Recoding = *req.Recoding
	}
	if len(req.RequestedRows) > 0 {
		c.RequestedRows = append([]string(nil), req.RequestedRows...)
	}
	return c
}

// settings flattens the config for run fingerprints
func (c PipelineConfig) settings() map[string]interface{} {
	return map[string]interface{}{
		"box_size":            c.Recoding.Default.BoxSize,
		"direction":           c.Recoding.Default.Direction,
		"overrides":           c.Recoding.Overrides,
		"exclude":             c.Recoding.Exclude,
		"significance":        c.Significance,
		"alpha":               c.Alpha,
		"marginal_alpha":      c.MarginalAlpha,
		"yates":               c.Yates,
		"requested_rows":      c.RequestedRows,
		"exclude_banner_rows": c.ExcludeBannerRows,
	}
}
