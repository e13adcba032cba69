package types

// Outcome is the kind of a Decision
type Outcome string

// Decision outcomes
const (
	OutcomeDirect    Outcome = "direct"
	OutcomeSecondary Outcome = "secondary_check"
	OutcomePending   Outcome = "pending"
)

// Decision is the result of classifying one score table. Exactly one of
// DirectClassify, SecondaryCheck or Pending.
type Decision interface {
	Outcome() Outcome
	decision()
}

// DirectClassify assigns the file to a category without review.
type DirectClassify struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
}

// SecondaryCheck flags the file for human confirmation.
type SecondaryCheck struct {
	Candidates []ScoreEntry `json:"candidates"`
	Reason     string       `json:"reason"`
}

// Pending leaves the file where it is.
type Pending struct {
	Reason string `json:"reason"`
}

// Outcome implements Decision.
func (DirectClassify) Outcome() Outcome { return OutcomeDirect }

// Outcome implements Decision.
func (SecondaryCheck) Outcome() Outcome { return OutcomeSecondary }

// Outcome implements Decision.
func (Pending) Outcome() Outcome { return OutcomePending }

func (DirectClassify) decision() {}
func (SecondaryCheck) decision() {}
func (Pending) decision()        {}
