// Package orders computes maker/taker amounts for limit and market orders
// and assembles them into signable order records. All arithmetic happens in
// the 1e18 fixed-point integer domain; book levels arrive as human decimals
// and are scaled on entry.
package orders

import (
	"math/big"

	"github.com/betbot/goclob/fixedpoint"
	"github.com/betbot/goclob/types"
)

// BookFill is the outcome of walking depth levels against a share target.
type BookFill struct {
	// FilledQuantity is the total shares consumed, at most the target.
	FilledQuantity *big.Int
	// TotalCost is the collateral spent across touched levels, accumulated
	// as price*consumed/scale per level so rounding never compounds.
	TotalCost *big.Int
	// LastPrice is the price of the last level that contributed any fill,
	// zero when nothing filled. Market orders use it as the worst-price
	// bound for the whole fill.
	LastPrice *big.Int
}

// ProcessBook consumes depth levels in array order until targetQuantity
// shares are filled or the levels run out. Each level is taken entirely
// unless the remaining need is smaller, in which case only that fraction is
// consumed. Levels are never reordered; suppliers hand asks ascending and
// bids best-first. A short book fills partially without error; callers
// decide whether a partial fill is acceptable.
func ProcessBook(depths []types.DepthLevel, targetQuantity *big.Int) BookFill {
	fill := BookFill{
		FilledQuantity: new(big.Int),
		TotalCost:      new(big.Int),
		LastPrice:      new(big.Int),
	}
	if targetQuantity == nil || targetQuantity.Sign() <= 0 {
		return fill
	}

	remaining := new(big.Int).Set(targetQuantity)
	for _, level := range depths {
		if remaining.Sign() <= 0 {
			break
		}
		price := fixedpoint.FromDecimal(level.Price)
		size := fixedpoint.FromDecimal(level.Size)

		consumed := size
		if remaining.Cmp(size) < 0 {
			consumed = remaining
		}
		if consumed.Sign() <= 0 {
			continue
		}

		fill.TotalCost.Add(fill.TotalCost, fixedpoint.MulDiv(price, consumed, fixedpoint.One))
		fill.FilledQuantity.Add(fill.FilledQuantity, consumed)
		fill.LastPrice.Set(price)
		remaining.Sub(remaining, consumed)
	}
	return fill
}

// sharesForValue walks asks spending up to value collateral and returns the
// share quantity the budget buys. A tier whose full cost fits the remaining
// budget is consumed whole; the tier that exhausts the budget contributes
// remaining*scale/price shares and ends the walk.
func sharesForValue(asks []types.DepthLevel, value *big.Int) *big.Int {
	shares := new(big.Int)
	if value == nil || value.Sign() <= 0 {
		return shares
	}

	remaining := new(big.Int).Set(value)
	for _, level := range asks {
		if remaining.Sign() <= 0 {
			break
		}
		price := fixedpoint.FromDecimal(level.Price)
		size := fixedpoint.FromDecimal(level.Size)
		if price.Sign() <= 0 || size.Sign() <= 0 {
			continue
		}

		tierCost := fixedpoint.MulDiv(price, size, fixedpoint.One)
		if tierCost.Cmp(remaining) <= 0 {
			shares.Add(shares, size)
			remaining.Sub(remaining, tierCost)
			continue
		}

		shares.Add(shares, fixedpoint.MulDiv(remaining, fixedpoint.One, price))
		break
	}
	return shares
}
