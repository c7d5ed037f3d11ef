// internal/utils/commission.go
package utils

import (
	"github.com/shopspring/decimal"
)

// DefaultPlatformCommissionRate is the platform's cut of every sale unless
// PLATFORM_COMMISSION_RATE overrides it.
const DefaultPlatformCommissionRate = 0.07

type CommissionSplit struct {
	Commission   float64 `json:"commission"`
	SellerAmount float64 `json:"seller_amount"`
}

// CalculateCommission splits a total price into the platform commission and
// the seller amount at the given rate. The commission is rounded to two
// decimals (half away from zero); the seller amount is the remainder rather
// than total*(1-rate), so the rounding error lands entirely on the seller
// side and commission + sellerAmount always equals the rounded total exactly.
func CalculateCommission(totalPrice, rate float64) CommissionSplit {
	total := decimal.NewFromFloat(totalPrice).Round(2)
	commission := total.Mul(decimal.NewFromFloat(rate)).Round(2)
	sellerAmount := total.Sub(commission)

	c, _ := commission.Float64()
	s, _ := sellerAmount.Float64()

	return CommissionSplit{
		Commission:   c,
		SellerAmount: s,
	}
}
