package domain

// Grade represents the reviewer's feedback on a single item, given after the
// answer has been revealed.
type Grade string

// Possible grade values, from worst recall to best.
const (
	GradeAgain Grade = "again"
	GradeHard  Grade = "hard"
	GradeGood  Grade = "good"
	GradeEasy  Grade = "easy"
)

// IsValid reports whether g is one of the four recognised grades.
func (g Grade) IsValid() bool {
	switch g {
	case GradeAgain, GradeHard, GradeGood, GradeEasy:
		return true
	default:
		return false
	}
}

// ItemState represents where an item sits in its scheduling lifecycle.
type ItemState string

// Possible item states.
const (
	// ItemStateNew marks an item that has never been shown.
	ItemStateNew ItemState = "new"

	// ItemStateLearning marks an item moving through the short-interval
	// learning steps before its first graduation.
	ItemStateLearning ItemState = "learning"

	// ItemStateReview marks a graduated item in the long-interval steady state.
	ItemStateReview ItemState = "review"

	// ItemStateRelearning marks a lapsed item recovering through the
	// relearning steps.
	ItemStateRelearning ItemState = "relearning"
)

// IsValid reports whether s is one of the four recognised states.
func (s ItemState) IsValid() bool {
	switch s {
	case ItemStateNew, ItemStateLearning, ItemStateReview, ItemStateRelearning:
		return true
	default:
		return false
	}
}
