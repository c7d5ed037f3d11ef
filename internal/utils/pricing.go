// internal/utils/pricing.go
package utils

const (
	minIdeaPrice = 2
	maxIdeaPrice = 10
)

// CalculateIdeaPrice derives a listing price from the AI rating. Each
// dimension maps to a tier independently: above 6 is worth $5, 4 through 6 is
// worth $3, anything below 4 is worth $1. The sum is clamped to [$2, $10].
// Inputs are expected in [0, 10]; out-of-range values are the caller's
// problem.
func CalculateIdeaPrice(originality, useCaseValue float64) float64 {
	total := tierPrice(originality) + tierPrice(useCaseValue)

	if total < minIdeaPrice {
		total = minIdeaPrice
	}
	if total > maxIdeaPrice {
		total = maxIdeaPrice
	}

	return total
}

func tierPrice(score float64) float64 {
	switch {
	case score > 6:
		return 5
	case score >= 4:
		return 3
	default:
		return 1
	}
}
