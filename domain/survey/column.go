package survey

import "strconv"

// Column stores one variable's responses, one slot per respondent row
type Column struct {
	Values  []int
	Missing []bool
}

// NewColumn builds a column from nullable codes
func NewColumn(values []*int) Column {
	col := Column{Values: make([]int, len(values)), Missing: make([]bool, len(values))}
	for i, v := range values {
		if v == nil {
			col.Missing[i] = true
			continue
		}
		col.Values[i] = *v
	}
	return col
}

// ColumnOf builds a column with no system-missing cells
func ColumnOf(values ...int) Column {
	return Column{Values: append([]int(nil), values...), Missing: make([]bool, len(values))}
}

// Len returns the number of rows
func (c Column) Len() int {
	return len(c.Values)
}

// At returns the code at row i and whether it is present
func (c Column) At(i int) (int, bool) {
	if c.Missing[i] {
		return 0, false
	}
	return c.Values[i], true
}

// Observed returns the distinct present codes
func (c Column) Observed() []int {
	seen := make(map[int]struct{})
	var out []int
	for i, v := range c.Values {
		if c.Missing[i] {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func formatCode(code int) string {
	return strconv.Itoa(code)
}
