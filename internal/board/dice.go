package board

import "math/rand"

// RollDice sums n six-sided dice. n below 1 is treated as one die.
func RollDice(rng *rand.Rand, n int) int {
	if n < 1 {
		n = 1
	}
	total := 0
	for i := 0; i < n; i++ {
		total += rng.Intn(6) + 1
	}
	return total
}
