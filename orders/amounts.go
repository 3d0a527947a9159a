package orders

import (
	"math/big"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/goclob/fixedpoint"
	"github.com/betbot/goclob/pkg/logger"
	"github.com/betbot/goclob/types"
)

const (
	// Prices keep 3 and quantities 5 significant digits before any
	// multiplication. Noisy high-precision decimals otherwise produce
	// maker/taker pairs that fail the exchange's exact cross-check.
	priceDigits    = 3
	quantityDigits = 5

	// bookFreshness is how old a snapshot may get before amount
	// computations log a staleness advisory. Advisory only: amounts are
	// still correct for the snapshot supplied.
	bookFreshness = 5 * time.Minute
)

var (
	// minQuantity is the dust threshold: 0.01 shares.
	minQuantity = big.NewInt(1e16)

	// minValue is the smallest currency target for a value-based market
	// buy: one whole collateral unit.
	minValue = big.NewInt(1e18)
)

// GetLimitOrderAmounts derives amounts for a limit order at the caller's
// price. A BUY offers price*quantity/scale collateral for quantity shares; a
// SELL offers quantity shares for price*quantity/scale collateral.
// PricePerShare echoes the truncated input price.
func GetLimitOrderAmounts(side types.Side, price, quantity *big.Int) (*types.OrderAmounts, error) {
	price = fixedpoint.RetainSignificantDigits(price, priceDigits)
	quantity = fixedpoint.RetainSignificantDigits(quantity, quantityDigits)
	if quantity.Cmp(minQuantity) < 0 {
		return nil, errors.Wrapf(types.ErrInvalidQuantity,
			"quantity %s below minimum %s", quantity, minQuantity)
	}

	collateral := fixedpoint.MulDiv(price, quantity, fixedpoint.One)
	amounts := &types.OrderAmounts{
		PricePerShare: price,
		LastPrice:     new(big.Int).Set(price),
	}
	if side == types.SideBuy {
		amounts.MakerAmount = collateral
		amounts.TakerAmount = quantity
	} else {
		amounts.MakerAmount = quantity
		amounts.TakerAmount = collateral
	}
	return amounts, nil
}

// GetMarketOrderAmounts derives amounts for a market order targeting a share
// quantity. A BUY walks the asks, a SELL walks the bids. The collateral side
// of the pair is bounded at the worst touched price, so the order cannot
// execute beyond the depth that was walked; PricePerShare is the average
// cost per filled share, zero when nothing fills.
func GetMarketOrderAmounts(side types.Side, quantity *big.Int, book *types.Book) (*types.OrderAmounts, error) {
	warnIfStale(book)

	quantity = fixedpoint.RetainSignificantDigits(quantity, quantityDigits)
	if quantity.Cmp(minQuantity) < 0 {
		return nil, errors.Wrapf(types.ErrInvalidQuantity,
			"quantity %s below minimum %s", quantity, minQuantity)
	}

	var depths []types.DepthLevel
	if book != nil {
		if side == types.SideBuy {
			depths = book.Asks
		} else {
			depths = book.Bids
		}
	}
	fill := ProcessBook(depths, quantity)

	pricePerShare := new(big.Int)
	if fill.FilledQuantity.Sign() > 0 {
		pricePerShare = fixedpoint.MulDiv(fill.TotalCost, fixedpoint.One, fill.FilledQuantity)
	}
	bound := fixedpoint.MulDiv(fill.LastPrice, fill.FilledQuantity, fixedpoint.One)

	amounts := &types.OrderAmounts{
		PricePerShare: pricePerShare,
		LastPrice:     fill.LastPrice,
	}
	if side == types.SideBuy {
		amounts.MakerAmount = bound
		amounts.TakerAmount = fill.FilledQuantity
	} else {
		amounts.MakerAmount = fill.FilledQuantity
		amounts.TakerAmount = bound
	}
	return amounts, nil
}

// GetMarketOrderAmountsByValue derives amounts for a market BUY that targets
// a collateral value instead of a share quantity. The budget walk over the
// asks yields a raw share count; that count is truncated and priced back
// through GetMarketOrderAmounts so both market modes share one
// slippage-bounding policy instead of duplicating it. Minimum value is one
// whole collateral unit.
func GetMarketOrderAmountsByValue(value *big.Int, book *types.Book) (*types.OrderAmounts, error) {
	if value == nil || value.Cmp(minValue) < 0 {
		return nil, errors.Wrapf(types.ErrInvalidQuantity,
			"value %s below minimum %s", bigOrZero(value), minValue)
	}

	var asks []types.DepthLevel
	if book != nil {
		asks = book.Asks
	}
	shares := sharesForValue(asks, value)
	return GetMarketOrderAmounts(types.SideBuy, shares, book)
}

func warnIfStale(book *types.Book) {
	if book == nil {
		return
	}
	age := time.Since(book.UpdatedAt())
	if age > bookFreshness {
		logger.WithFields(logrus.Fields{
			"token_id": book.TokenID,
			"age":      age.Round(time.Second).String(),
		}).Warn("order book snapshot is stale; amounts reflect old depth")
	}
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
