package decision

import (
	"fmt"

	"gobanner/domain/core"
	"gobanner/domain/survey"
)

// Kind names the human confirmation a pipeline is waiting for
type Kind string

const (
	KindClassificationReview Kind = "classification_review"
	KindRecodingChoice       Kind = "recoding_choice"
	KindBannerSelection      Kind = "banner_selection"
	KindAuditApproval        Kind = "audit_approval"
)

// Option is one choice offered with a pending decision
type Option struct {
	ID          string `json:"id"`
	Variable    string `json:"variable,omitempty"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Recommended bool   `json:"recommended"`
}

// Pending is returned instead of a result when the pipeline needs a decision.
// It carries the computed options so a caller can answer without rerunning analysis.
type Pending struct {
	ID        core.DecisionID `json:"id"`
	Kind      Kind            `json:"kind"`
	Prompt    string          `json:"prompt"`
	Options   []Option        `json:"options"`
	Variables []string        `json:"variables,omitempty"`
	CreatedAt core.Timestamp  `json:"created_at"`
}

// NewPending creates a pending decision of the given kind
func NewPending(kind Kind, prompt string, options []Option) *Pending {
	p := &Pending{
		ID:        core.NewDecisionID(),
		Kind:      kind,
		Prompt:    prompt,
		Options:   options,
		CreatedAt: core.Now(),
	}
	seen := make(map[string]bool)
	for _, o := range options {
		if o.Variable != "" && !seen[o.Variable] {
			seen[o.Variable] = true
			p.Variables = append(p.Variables, o.Variable)
		}
	}
	return p
}

// Recommended returns the options flagged as recommended
func (p *Pending) Recommended() []Option {
	var out []Option
	for _, o := range p.Options {
		if o.Recommended {
			out = append(out, o)
		}
	}
	return out
}

// RecodingChoice overrides the recoding applied to one variable
type RecodingChoice struct {
	BoxSize   int              `json:"box_size" yaml:"box_size"`
	Direction survey.Direction `json:"direction" yaml:"direction"`
	// Exclude keeps the variable as-is with no derived box variable
	Exclude bool `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// Record carries the answers to pending decisions. A zero Record answers nothing.
type Record struct {
	// Kinds overrides the classifier per variable and always wins
	Kinds map[string]survey.Kind `json:"kinds,omitempty" yaml:"kinds,omitempty"`
	// ClassificationConfirmed accepts the (possibly overridden) classification
	ClassificationConfirmed bool `json:"classification_confirmed,omitempty" yaml:"classification_confirmed,omitempty"`

	Recoding          map[string]RecodingChoice `json:"recoding,omitempty" yaml:"recoding,omitempty"`
	RecodingConfirmed bool                      `json:"recoding_confirmed,omitempty" yaml:"recoding_confirmed,omitempty"`

	// Banners answers a banner selection
	Banners []string `json:"banners,omitempty" yaml:"banners,omitempty"`

	AuditApproved bool `json:"audit_approved,omitempty" yaml:"audit_approved,omitempty"`
}

// Answers reports whether the record resolves a pending decision of the given kind
func (r Record) Answers(kind Kind) bool {
	switch kind {
	case KindClassificationReview:
		return r.ClassificationConfirmed
	case KindRecodingChoice:
		return r.RecodingConfirmed
	case KindBannerSelection:
		return len(r.Banners) > 0
	case KindAuditApproval:
		return r.AuditApproved
	}
	return false
}

// Validate checks override values
func (r Record) Validate() error {
	for name, kind := range r.Kinds {
		if _, err := survey.ParseKind(string(kind)); err != nil {
			return fmt.Errorf("%w: %s: %v", core.ErrInvalidDecision, name, err)
		}
	}
	for name, choice := range r.Recoding {
		if choice.Exclude {
			continue
		}
		if choice.BoxSize < 1 {
			return fmt.Errorf("%w: %s: box size must be at least 1", core.ErrInvalidDecision, name)
		}
		if _, err := survey.ParseDirection(string(choice.Direction)); err != nil {
			return fmt.Errorf("%w: %s: %v", core.ErrInvalidDecision, name, err)
		}
	}
	return nil
}

// Merge returns r with fields from next layered on top
func (r Record) Merge(next Record) Record {
	out := r
	if len(next.Kinds) > 0 {
		out.Kinds = make(map[string]survey.Kind, len(r.Kinds)+len(next.Kinds))
		for k, v := range r.Kinds {
			out.Kinds[k] = v
		}
		for k, v := range next.Kinds {
			out.Kinds[k] = v
		}
	}
	if len(next.Recoding) > 0 {
		out.Recoding = make(map[string]RecodingChoice, len(r.Recoding)+len(next.Recoding))
		for k, v := range r.Recoding {
			out.Recoding[k] = v
		}
		for k, v := range next.Recoding {
			out.Recoding[k] = v
		}
	}
	if len(next.Banners) > 0 {
		out.Banners = append([]string(nil), next.Banners...)
	}
	out.ClassificationConfirmed = r.ClassificationConfirmed || next.ClassificationConfirmed
	out.RecodingConfirmed = r.RecodingConfirmed || next.RecodingConfirmed
	out.AuditApproved = r.AuditApproved || next.AuditApproved
	return out
}
