package testkit

import (
	"gobanner/domain/survey"
)

// WorkedExample is ten respondents answering a 5-point scale Q1 with a
// "Don't know" (99) answer, split by a two-group banner GROUP.
// Top-2-box on Q1 is 4 of a base of 9.
func WorkedExample() *survey.Dataset {
	ds, err := survey.FromVariables(
		[]survey.Variable{
			{Name: "Q1", Label: "Overall satisfaction", ValueLabels: map[int]string{
				1: "Very dissatisfied", 2: "Dissatisfied", 3: "Neutral", 4: "Satisfied", 5: "Very satisfied",
				99: "Don't know",
			}},
			{Name: "GROUP", Label: "Group", ValueLabels: map[int]string{1: "First", 2: "Second"}},
		},
		map[string]survey.Column{
			"Q1":    survey.ColumnOf(1, 2, 3, 4, 5, 4, 5, 99, 3, 2),
			"GROUP": survey.ColumnOf(1, 1, 1, 1, 1, 2, 2, 2, 2, 2),
		},
	)
	if err != nil {
		panic(err)
	}
	return ds
}

// SignificanceScenario is two segments of 50 where 30 of A and 10 of B are in
// the top 2 box of SAT.
func SignificanceScenario() *survey.Dataset {
	var sat, seg []int
	add := func(segment, top, rest int) {
		for i := 0; i < top; i++ {
			sat = append(sat, 4+i%2)
			seg = append(seg, segment)
		}
		for i := 0; i < rest; i++ {
			sat = append(sat, 1+i%3)
			seg = append(seg, segment)
		}
	}
	add(1, 30, 20)
	add(2, 10, 40)

	ds, err := survey.FromVariables(
		[]survey.Variable{
			{Name: "SAT", Label: "Satisfaction", ValueLabels: map[int]string{
				1: "Very dissatisfied", 2: "Dissatisfied", 3: "Neutral", 4: "Satisfied", 5: "Very satisfied",
			}},
			{Name: "SEG", Label: "Segment", ValueLabels: map[int]string{1: "A", 2: "B"}},
		},
		map[string]survey.Column{
			"SAT": survey.ColumnOf(sat...),
			"SEG": survey.ColumnOf(seg...),
		},
	)
	if err != nil {
		panic(err)
	}
	return ds
}
