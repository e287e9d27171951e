// Package selection decides which recommendations get applied. Selection is
// pure: it never performs I/O itself, interactive decisions come in through
// a DecisionFunc supplied by the caller.
package selection

import "resumizer/internal/types"

// Decision is a single interactive answer for one recommendation.
type Decision int

const (
	// Skip leaves the current recommendation out.
	Skip Decision = iota
	// Accept includes the current recommendation.
	Accept
	// AcceptRest includes the current and every remaining recommendation.
	AcceptRest
	// SkipRest leaves the current and every remaining recommendation out.
	SkipRest
)

// DecisionFunc is called once per recommendation, in priority order, until
// it returns AcceptRest or SkipRest.
type DecisionFunc func(rec types.Recommendation) (Decision, error)

// None selects nothing. This is the report-only mode behind --auto.
func None(set *types.RecommendationSet) []types.Recommendation {
	return []types.Recommendation{}
}

// UpToPriority selects every recommendation whose priority is at or above
// the cutoff, meaning numerically less than or equal to it. Input order is
// preserved.
func UpToPriority(set *types.RecommendationSet, maxPriority int) []types.Recommendation {
	selected := []types.Recommendation{}
	for _, rec := range set.Recommendations {
		if rec.Priority <= maxPriority {
			selected = append(selected, rec)
		}
	}
	return selected
}

// Interactive walks the recommendations in order and asks decide about each
// one. AcceptRest and SkipRest resolve all remaining items without further
// calls. An error from decide aborts selection.
func Interactive(set *types.RecommendationSet, decide DecisionFunc) ([]types.Recommendation, error) {
	selected := []types.Recommendation{}
	for i, rec := range set.Recommendations {
		decision, err := decide(rec)
		if err != nil {
			return nil, err
		}

		switch decision {
		case Accept:
			selected = append(selected, rec)
		case AcceptRest:
			selected = append(selected, set.Recommendations[i:]...)
			return selected, nil
		case SkipRest:
			return selected, nil
		}
	}
	return selected, nil
}
