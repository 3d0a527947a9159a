package types

import (
	"context"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// DepthLevel is one (price, size) tier of an order book.
type DepthLevel struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// Level builds a depth level from human-decimal strings. It panics on
// malformed input and is meant for fixtures and tests.
func Level(price, size string) DepthLevel {
	return DepthLevel{
		Price: decimal.RequireFromString(price),
		Size:  decimal.RequireFromString(size),
	}
}

// Book is a market depth snapshot. Asks are sorted ascending by price (best
// ask first). Bids are supplied best-first in array order; the walker always
// consumes from index 0 and never sorts, so ordering is the supplier's
// responsibility.
type Book struct {
	TokenID string       `json:"asset_id,omitempty"`
	Asks    []DepthLevel `json:"asks"`
	Bids    []DepthLevel `json:"bids"`

	// UpdateTimestampMs is when the snapshot was taken, unix milliseconds.
	UpdateTimestampMs int64 `json:"timestamp,string"`
}

// UpdatedAt returns the snapshot time.
func (b *Book) UpdatedAt() time.Time {
	return time.UnixMilli(b.UpdateTimestampMs)
}

// BookProvider supplies depth snapshots. The SDK never fetches books itself;
// callers plug in whatever transport they already have.
type BookProvider interface {
	Book(ctx context.Context, tokenID string) (*Book, error)
}

// OrderAmounts is the output of the amount calculator in the fixed-point
// integer domain: the derived price per share, the maker/taker token amounts,
// and the price of the last book level that contributed to a market fill.
// Recomputed per trade, never persisted.
type OrderAmounts struct {
	PricePerShare *big.Int
	MakerAmount   *big.Int
	TakerAmount   *big.Int
	LastPrice     *big.Int
}
