package verification

import (
	"fmt"
	"strings"
)

// RenderCTABLES renders the document as SPSS Custom Tables syntax
func RenderCTABLES(d Document) string {
	var b strings.Builder
	rule := "* ============================================."

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "* SPSS Custom Tables Syntax")
	fmt.Fprintf(&b, "* Generated: %s\n", d.GeneratedAt)
	fmt.Fprintf(&b, "* Title: %s\n", d.Title)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "* Banner variables: %s.\n", strings.Join(d.Banners, ", "))
	names := make([]string, len(d.Requests))
	for i, r := range d.Requests {
		names[i] = r.RowVariable
	}
	fmt.Fprintf(&b, "* Row variables: %s.\n\n", strings.Join(names, ", "))

	if originals := d.Originals(); len(originals) > 0 {
		fmt.Fprintln(&b, "* --- Original Variables (All Scale Points) ---.")
		fmt.Fprintln(&b)
		for _, r := range originals {
			writeTable(&b, r)
		}
	}
	if recoded := d.Recoded(); len(recoded) > 0 {
		fmt.Fprintln(&b, "* --- Recoded Variables (Top/Bottom Box) ---.")
		fmt.Fprintln(&b)
		for _, r := range recoded {
			fmt.Fprintf(&b, "* %s = %s %s %d (threshold %d).\n", r.RowVariable, r.Recode.Source, r.Recode.Direction, r.Recode.BoxSize, r.Recode.Threshold)
			writeTable(&b, r)
		}
	}

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "* END OF SYNTAX")
	fmt.Fprint(&b, rule)
	return b.String()
}

func writeTable(b *strings.Builder, r Request) {
	if len(r.ExcludedCodes) > 0 {
		codes := make([]string, len(r.ExcludedCodes))
		for i, c := range r.ExcludedCodes {
			codes[i] = fmt.Sprint(c)
		}
		fmt.Fprintf(b, "MISSING VALUES %s (%s).\n", r.RowVariable, strings.Join(codes, ","))
	}
	empty := "EXCLUDE"
	if r.IncludeEmpty {
		empty = "INCLUDE"
	}

	fmt.Fprintln(b, "CTABLES")
	fmt.Fprintf(b, "  /TABLE %s [C][COUNT F40.0, COLPCT.COUNT PCT40.5]\n", r.RowVariable)
	if len(r.Banners) > 0 {
		fmt.Fprintf(b, "    BY %s [C]\n", strings.Join(r.Banners, " + "))
	}
	fmt.Fprintf(b, "  /CATEGORIES VARIABLES=%s ORDER=A KEY=VALUE EMPTY=%s\n", r.RowVariable, empty)
	for _, bv := range r.Banners {
		fmt.Fprintf(b, "  /CATEGORIES VARIABLES=%s ORDER=A KEY=VALUE EMPTY=%s\n", bv, empty)
	}
	if r.ChiSquare {
		fmt.Fprintln(b, "  /SIGTEST TYPE=CHISQUARE ALPHA=0.05")
	}
	fmt.Fprintln(b, ".")
	fmt.Fprintln(b)
}
