package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogAccumulatesInOrder(t *testing.T) {
	var log Log
	log.Addf(RecodeSkip, "Q2", "only %d substantive codes", 2)
	log.Add(Warning{Kind: LowPower, Variable: "Q1", Banner: "REGION", Message: "expected count 3.2 < 5"})
	log.Addf(RecodeSkip, "Q3", "not ordinal")

	assert.Equal(t, 3, log.Len())
	assert.Equal(t, "Q2", log.Warnings()[0].Variable)
	assert.Len(t, log.Of(RecodeSkip), 2)
	assert.Equal(t, map[Kind]int{RecodeSkip: 2, LowPower: 1}, log.CountByKind())
	assert.Equal(t, []Kind{LowPower, RecodeSkip}, log.Kinds())
}

func TestWarningString(t *testing.T) {
	w := Warning{Kind: LocalZeroBase, Variable: "Q1", Banner: "REGION", Column: "REGION=3", Message: "no substantive answers"}
	assert.Equal(t, "local_zero_base: Q1 x REGION [REGION=3]: no substantive answers", w.String())
	assert.Equal(t, "low_power: x", Warning{Kind: LowPower, Message: "x"}.String())
}
