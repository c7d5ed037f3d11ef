// internal/utils/pricing_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateIdeaPrice(t *testing.T) {
	tests := []struct {
		name         string
		originality  float64
		useCaseValue float64
		want         float64
	}{
		{"both zero clamps to minimum", 0, 0, 2},
		{"both maximum", 10, 10, 10},
		{"both high tier", 7, 7, 10},
		{"both mid tier", 5, 5, 6},
		{"boundary at exactly six is mid tier", 6, 6, 6},
		{"just above six is high tier", 6.1, 6.1, 10},
		{"boundary at exactly four is mid tier", 4, 4, 6},
		{"just below four is low tier", 3.9, 3.9, 2},
		{"mixed tiers", 8, 3, 6},
		{"high and mid", 9, 5, 8},
		{"low and mid", 1, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateIdeaPrice(tt.originality, tt.useCaseValue))
		})
	}
}

func TestCalculateIdeaPriceBounds(t *testing.T) {
	// Every combination over the input domain stays within [2, 10].
	for o := 0.0; o <= 10.0; o += 0.5 {
		for u := 0.0; u <= 10.0; u += 0.5 {
			price := CalculateIdeaPrice(o, u)
			assert.GreaterOrEqual(t, price, 2.0, "price(%.1f, %.1f)", o, u)
			assert.LessOrEqual(t, price, 10.0, "price(%.1f, %.1f)", o, u)
		}
	}
}

func TestCalculateIdeaPriceMonotonic(t *testing.T) {
	// Raising either score never lowers the price.
	for o := 0.0; o < 10.0; o += 0.5 {
		for u := 0.0; u < 10.0; u += 0.5 {
			base := CalculateIdeaPrice(o, u)
			assert.GreaterOrEqual(t, CalculateIdeaPrice(o+0.5, u), base)
			assert.GreaterOrEqual(t, CalculateIdeaPrice(o, u+0.5), base)
		}
	}
}
