package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRewardRuleApply(t *testing.T) {
	tests := []struct {
		name    string
		rule    RewardRule
		current int
		total   int
		awarded int
	}{
		{"add is a fixed amount", RewardRule{Op: OpAdd, Value: 20}, 0, 20, 20},
		{"add stacks on the total", RewardRule{Op: OpAdd, Value: 20}, 50, 70, 20},
		{"subtract is a fixed amount", RewardRule{Op: OpSubtract, Value: 10}, 50, 40, -10},
		{"subtract clamps at zero", RewardRule{Op: OpSubtract, Value: 10}, 5, 0, -5},
		{"multiply acts on the running total", RewardRule{Op: OpMultiply, Value: 2}, 30, 60, 30},
		{"divide acts on the running total", RewardRule{Op: OpDivide, Value: 2}, 30, 15, -15},
		{"divide by zero is a no-op", RewardRule{Op: OpDivide, Value: 0}, 30, 30, 0},
		{"unknown op is a no-op", RewardRule{Op: "BANANA", Value: 5}, 30, 30, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, awarded := tt.rule.Apply(tt.current)
			require.Equal(t, tt.total, total)
			require.Equal(t, tt.awarded, awarded)
		})
	}
}
