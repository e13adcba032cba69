package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecision_Outcomes(t *testing.T) {
	cases := []struct {
		decision Decision
		want     Outcome
	}{
		{DirectClassify{Category: "05-都市", Score: 20}, OutcomeDirect},
		{SecondaryCheck{Reason: "a(10) vs b(9)"}, OutcomeSecondary},
		{Pending{Reason: "no keyword matches"}, OutcomePending},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.decision.Outcome())
	}
}

func TestSample_Len(t *testing.T) {
	s := Sample{Fragments: []Fragment{{Offset: 0, Text: "斗气大陆"}, {Offset: 100, Text: "abc"}}}
	assert.Equal(t, 7, s.Len())
	assert.Equal(t, 0, Sample{}.Len())
}

func TestDecodedText_Canonical(t *testing.T) {
	assert.True(t, DecodedText{Method: MethodCanonical}.Canonical())
	assert.False(t, DecodedText{Method: MethodLossy}.Canonical())
}
