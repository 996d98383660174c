package policy

// Recommendation is an agent's stance on a proposed action, ordered from
// most to least favorable.
type Recommendation string

const (
	StronglyApprove    Recommendation = "strongly_approve"
	Approve            Recommendation = "approve"
	ApproveWithCaution Recommendation = "approve_with_caution"
	NotRecommended     Recommendation = "not_recommended"
	StronglyOppose     Recommendation = "strongly_oppose"
	Blocked            Recommendation = "blocked"
)

// Valid reports whether r is one of the six known labels.
func (r Recommendation) Valid() bool {
	switch r {
	case StronglyApprove, Approve, ApproveWithCaution, NotRecommended, StronglyOppose, Blocked:
		return true
	default:
		return false
	}
}

// The decision rules and the consensus rules deliberately slice the label
// set differently: approve_with_caution counts as approving for consensus
// but not for the decision.

func approves(r Recommendation) bool {
	return r == StronglyApprove || r == Approve
}

func opposes(r Recommendation) bool {
	return r == StronglyOppose || r == Blocked
}

func cautionsOrOpposes(r Recommendation) bool {
	switch r {
	case ApproveWithCaution, NotRecommended, StronglyOppose, Blocked:
		return true
	default:
		return false
	}
}

func approvingForConsensus(r Recommendation) bool {
	return r == StronglyApprove || r == Approve || r == ApproveWithCaution
}

func opposingForConsensus(r Recommendation) bool {
	return r == NotRecommended || r == StronglyOppose || r == Blocked
}
