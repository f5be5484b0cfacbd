package ports

import (
	"gobanner/domain/audit"
	"gobanner/domain/banner"
)

// SignificanceTester tests independence of a row variable and a banner variable
type SignificanceTester interface {
	Name() string
	Test(ct banner.Contingency) (banner.SignificanceResult, []audit.Warning)
}
