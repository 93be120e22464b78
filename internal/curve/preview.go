// Package curve renders a client-side preview of the linear bonding curve
// the token contract enforces on-chain: price = base_price + slope * supply.
// The preview is indicative only; the contract is authoritative and this
// package never feeds back into the invocation pipeline.
package curve

import (
	"math/big"

	"creatorhub/internal/scval"
)

// Curve holds the pricing parameters as raw scaled integers (stroops).
type Curve struct {
	BasePrice *big.Int
	Slope     *big.Int
}

// New parses decimal amount strings into a curve.
func New(basePrice, slope string) (Curve, error) {
	base, err := scval.ParseAmount(basePrice)
	if err != nil {
		return Curve{}, err
	}
	s, err := scval.ParseAmount(slope)
	if err != nil {
		return Curve{}, err
	}
	return Curve{BasePrice: base, Slope: s}, nil
}

// PriceAt returns the spot price at the given circulating supply (whole
// units), in raw stroops.
func (c Curve) PriceAt(supply *big.Int) *big.Int {
	price := new(big.Int).Mul(c.Slope, supply)
	return price.Add(price, c.BasePrice)
}

// CostToBuy sums the per-unit prices for buying amount whole units starting
// at the given supply:
//
//	amount * base + slope * (amount * supply + amount * (amount-1) / 2)
func (c Curve) CostToBuy(supply, amount *big.Int) *big.Int {
	if amount.Sign() <= 0 {
		return big.NewInt(0)
	}

	cost := new(big.Int).Mul(c.BasePrice, amount)

	ramp := new(big.Int).Mul(amount, supply)
	triangle := new(big.Int).Sub(amount, big.NewInt(1))
	triangle.Mul(triangle, amount)
	triangle.Quo(triangle, big.NewInt(2))
	ramp.Add(ramp, triangle)
	ramp.Mul(ramp, c.Slope)

	return cost.Add(cost, ramp)
}

// Preview samples the spot price at evenly spaced supply steps for chart
// rendering, formatted as canonical decimal strings.
func (c Curve) Preview(startSupply *big.Int, step int64, points int) []string {
	if points <= 0 {
		return nil
	}
	out := make([]string, points)
	supply := new(big.Int).Set(startSupply)
	for i := 0; i < points; i++ {
		out[i] = scval.FormatAmount(c.PriceAt(supply))
		supply.Add(supply, big.NewInt(step))
	}
	return out
}
