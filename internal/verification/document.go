// Package verification describes every tabulation of a run as declarative
// crosstab requests so an independent statistics tool can recompute them.
package verification

import (
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"

	"gobanner/domain/survey"
	"gobanner/internal/tables"
)

// Statistic is a cell statistic the verifying tool must produce
type Statistic string

const (
	StatCount         Statistic = "count"
	StatColumnPercent Statistic = "column_percent"
)

// RecodeRule describes how a derived row variable is computed from its source
type RecodeRule struct {
	Source    string           `json:"source" yaml:"source"`
	Direction survey.Direction `json:"direction" yaml:"direction"`
	BoxSize   int              `json:"box_size" yaml:"box_size"`
	Threshold int              `json:"threshold" yaml:"threshold"`
}

// Request is one crosstab of a row variable by the banner set
type Request struct {
	RowVariable   string      `json:"row_variable" yaml:"row_variable"`
	Label         string      `json:"label,omitempty" yaml:"label,omitempty"`
	Banners       []string    `json:"banners" yaml:"banners"`
	Statistics    []Statistic `json:"statistics" yaml:"statistics"`
	ExcludedCodes []int       `json:"excluded_codes,omitempty" yaml:"excluded_codes,omitempty"`
	IncludeEmpty  bool        `json:"include_empty_categories" yaml:"include_empty_categories"`
	ChiSquare     bool        `json:"chi_square" yaml:"chi_square"`
	Recode        *RecodeRule `json:"recode,omitempty" yaml:"recode,omitempty"`
}

// Document is the full verification query set of a run
type Document struct {
	Title       string    `json:"title" yaml:"title"`
	GeneratedAt string    `json:"generated_at" yaml:"generated_at"`
	Banners     []string  `json:"banners" yaml:"banners"`
	Requests    []Request `json:"requests" yaml:"requests"`
}

// Build creates one request per row variable in table order
func Build(title string, rows []tables.Entry, derived []survey.RecodedVariable, banners []string, significance bool) Document {
	rules := make(map[string]survey.RecodedVariable, len(derived))
	for _, rv := range derived {
		rules[rv.Name] = rv
	}

	doc := Document{
		Title:       title,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Banners:     append([]string(nil), banners...),
	}
	for _, entry := range rows {
		req := Request{
			RowVariable:   entry.Variable.Name,
			Label:         entry.Variable.Label,
			Banners:       doc.Banners,
			Statistics:    []Statistic{StatCount, StatColumnPercent},
			ExcludedCodes: entry.Variable.MissingCodes.Codes(),
			IncludeEmpty:  true,
			ChiSquare:     significance && len(banners) > 0,
		}
		if rv, ok := rules[entry.Variable.Name]; ok {
			req.Recode = &RecodeRule{
				Source:    rv.Source,
				Direction: rv.Direction,
				BoxSize:   rv.BoxSize,
				Threshold: rv.Threshold,
			}
		}
		doc.Requests = append(doc.Requests, req)
	}
	return doc
}

// Originals returns requests for non-derived variables
func (d Document) Originals() []Request {
	var out []Request
	for _, r := range d.Requests {
		if r.Recode == nil {
			out = append(out, r)
		}
	}
	return out
}

// Recoded returns requests for derived variables
func (d Document) Recoded() []Request {
	var out []Request
	for _, r := range d.Requests {
		if r.Recode != nil {
			out = append(out, r)
		}
	}
	return out
}

// JSON encodes the document with indentation
func (d Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// YAML encodes the document
func (d Document) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}

// ParseYAML decodes a document written by YAML
func ParseYAML(data []byte) (Document, error) {
	var d Document
	err := yaml.Unmarshal(data, &d)
	return d, err
}
