package events

// RewardOp says how a balloon's value applies to the popping player's score.
type RewardOp string

const (
	OpAdd      RewardOp = "ADD"
	OpSubtract RewardOp = "SUBTRACT"
	OpMultiply RewardOp = "MULTIPLY"
	OpDivide   RewardOp = "DIVIDE"
)

// RewardRule is fixed at spawn time by the master and mirrored verbatim by
// followers. Only the master ever evaluates it.
type RewardRule struct {
	Op    RewardOp `json:"op"`
	Value int      `json:"value"`
}

// Apply returns the new score and the delta awarded. Multiply and divide act
// on the player's current score; add and subtract are fixed amounts. Scores
// never go negative.
func (r RewardRule) Apply(current int) (total, awarded int) {
	switch r.Op {
	case OpAdd:
		total = current + r.Value
	case OpSubtract:
		total = current - r.Value
	case OpMultiply:
		total = current * r.Value
	case OpDivide:
		if r.Value == 0 {
			total = current
		} else {
			total = current / r.Value
		}
	default:
		total = current
	}
	if total < 0 {
		total = 0
	}
	return total, total - current
}
