package sweep

import (
	"strconv"
)

// Phi is the golden ratio used by the outward bloom.
const Phi = 1.61803398875

// NumericSeed is the sum of the seed's code points.
func NumericSeed(seed string) int64 {
	var total int64
	for _, r := range seed {
		total += int64(r)
	}
	return total
}

// Bloom is (alpha - reverse(alpha)) * Phi, where reverse flips the decimal
// digits of |alpha| and keeps the sign of alpha.
func Bloom(alpha int64) float64 {
	neg := alpha < 0
	if neg {
		alpha = -alpha
	}
	digits := []byte(strconv.FormatInt(alpha, 10))
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	rev, _ := strconv.ParseInt(string(digits), 10, 64)
	if neg {
		alpha, rev = -alpha, -rev
	}
	return float64(alpha-rev) * Phi
}
