package models

// OutcomeCategory is the result class of a beg attempt
type OutcomeCategory string

const (
	OutcomeNothing OutcomeCategory = "nothing"
	OutcomeLose    OutcomeCategory = "lose"
	OutcomeWin     OutcomeCategory = "win"
)

// Outcome is one drawn beg result
type Outcome struct {
	Category OutcomeCategory
	Delta    int64  // Signed wallet change
	Message  string // Rendered flavor text
}
