package report

import (
	"sort"

	"gobanner/domain/audit"
	"gobanner/domain/banner"
	"gobanner/domain/survey"
	"gobanner/internal/crosstab"
	"gobanner/internal/profiling"
	"gobanner/internal/tables"
)

// RecodingLine maps a derived variable back to its source
type RecodingLine struct {
	Recoded     string           `json:"recoded"`
	Source      string           `json:"source"`
	ScalePoints int              `json:"scale_points"`
	BoxSize     int              `json:"box_size"`
	Direction   survey.Direction `json:"direction"`
	Threshold   int              `json:"threshold"`
	// BoxShare is the share of valid source answers inside the box
	BoxShare float64 `json:"box_share"`
}

// CategoryPreview is one banner category with its respondent count
type CategoryPreview struct {
	Code  int     `json:"code"`
	Label string  `json:"label"`
	N     int     `json:"n"`
	Share float64 `json:"share"`
	Empty bool    `json:"empty"`
}

// BannerPreview lists a banner variable's categories
type BannerPreview struct {
	Variable   string            `json:"variable"`
	Label      string            `json:"label"`
	Categories []CategoryPreview `json:"categories"`
}

// RowPreview is one planned table row
type RowPreview struct {
	Variable string          `json:"variable"`
	Label    string          `json:"label"`
	Group    banner.RowGroup `json:"group"`
}

// Audit summarises what a run will tabulate before tables are built
type Audit struct {
	Respondents int                      `json:"respondents"`
	Originals   int                      `json:"originals"`
	Recoded     int                      `json:"recoded"`
	KindCounts  map[survey.Kind]int      `json:"kind_counts"`
	Recodings   []RecodingLine           `json:"recodings"`
	Banners     []BannerPreview          `json:"banners"`
	Rows        []RowPreview             `json:"rows"`
	Profiles    []profiling.ScaleProfile `json:"profiles"`
	Warnings    []audit.Warning          `json:"warnings"`
}

// BuildAudit gathers the audit summary of a prepared run
func BuildAudit(data *survey.DerivedDataset, layout crosstab.Layout, rows []tables.Entry, warnings []audit.Warning) (Audit, error) {
	analyzer := profiling.NewDistributionAnalyzer()
	originals := data.Originals()

	a := Audit{
		Respondents: data.RowCount(),
		Originals:   len(originals),
		KindCounts:  make(map[survey.Kind]int),
		Warnings:    append([]audit.Warning(nil), warnings...),
	}

	profiles := make(map[string]profiling.ScaleProfile)
	for _, v := range originals {
		a.KindCounts[v.Kind]++
		if v.Kind != survey.KindOrdinalScale {
			continue
		}
		col, _ := data.Column(v.Name)
		p, err := analyzer.Profile(v, col)
		if err != nil {
			return Audit{}, err
		}
		profiles[v.Name] = p
		a.Profiles = append(a.Profiles, p)
	}

	for _, rv := range data.Derived() {
		a.Recoded++
		line := RecodingLine{
			Recoded:     rv.Name,
			Source:      rv.Source,
			ScalePoints: rv.ScalePoints,
			BoxSize:     rv.BoxSize,
			Direction:   rv.Direction,
			Threshold:   rv.Threshold,
		}
		if p, ok := profiles[rv.Source]; ok {
			if rv.Direction == survey.DirectionBottom {
				line.BoxShare = 1 - p.TopShare(rv.Threshold+1)
			} else {
				line.BoxShare = p.TopShare(rv.Threshold)
			}
			if p.Valid == 0 {
				line.BoxShare = 0
			}
		}
		a.Recodings = append(a.Recodings, line)
	}

	for _, g := range layout.Groups {
		preview := BannerPreview{Variable: g.Variable, Label: g.Label}
		for _, c := range g.Columns {
			cp := CategoryPreview{Code: c.CategoryCode, Label: c.DisplayLabel, N: c.Respondents, Empty: c.Empty}
			if a.Respondents > 0 {
				cp.Share = float64(c.Respondents) / float64(a.Respondents)
			}
			preview.Categories = append(preview.Categories, cp)
		}
		a.Banners = append(a.Banners, preview)
	}

	for _, e := range rows {
		a.Rows = append(a.Rows, RowPreview{Variable: e.Variable.Name, Label: e.Variable.DisplayLabel(), Group: e.Group})
	}
	return a, nil
}

// EmptyColumns counts banner categories with no respondents
func (a Audit) EmptyColumns() int {
	n := 0
	for _, b := range a.Banners {
		for _, c := range b.Categories {
			if c.Empty {
				n++
			}
		}
	}
	return n
}

func sortedKinds(counts map[survey.Kind]int) []survey.Kind {
	var out []survey.Kind
	for _, k := range survey.AllKinds {
		if counts[k] > 0 {
			out = append(out, k)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return counts[out[i]] > counts[out[j]] })
	return out
}
