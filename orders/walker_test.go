package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/goclob/fixedpoint"
	"github.com/betbot/goclob/types"
)

// two-tier ask book used across the walker and calculator tests:
// 3 shares at 0.5, then 4 shares at 0.88
func testBook() *types.Book {
	return &types.Book{
		TokenID: "71321045679252212594626385532706912750332728571942532289631379312455583992563",
		Asks: []types.DepthLevel{
			types.Level("0.5", "3"),
			types.Level("0.88", "4"),
		},
		Bids: []types.DepthLevel{
			types.Level("0.45", "10"),
			types.Level("0.4", "6"),
		},
		UpdateTimestampMs: time.Now().UnixMilli(),
	}
}

func TestProcessBook_PartialLevel(t *testing.T) {
	fill := ProcessBook(testBook().Asks, fixedpoint.MustFromString("2"))

	assert.Equal(t, fixedpoint.MustFromString("2"), fill.FilledQuantity)
	assert.Equal(t, fixedpoint.MustFromString("1"), fill.TotalCost) // 2 * 0.5
	assert.Equal(t, fixedpoint.MustFromString("0.5"), fill.LastPrice)
}

func TestProcessBook_SpansLevels(t *testing.T) {
	fill := ProcessBook(testBook().Asks, fixedpoint.MustFromString("5"))

	// 3 at 0.5 plus 2 at 0.88
	assert.Equal(t, fixedpoint.MustFromString("5"), fill.FilledQuantity)
	assert.Equal(t, fixedpoint.MustFromString("3.26"), fill.TotalCost)
	assert.Equal(t, fixedpoint.MustFromString("0.88"), fill.LastPrice)
}

func TestProcessBook_ShortBookFillsPartially(t *testing.T) {
	fill := ProcessBook(testBook().Asks, fixedpoint.MustFromString("10"))

	// whole book is 7 shares costing 1.5 + 3.52
	assert.Equal(t, fixedpoint.MustFromString("7"), fill.FilledQuantity)
	assert.Equal(t, fixedpoint.MustFromString("5.02"), fill.TotalCost)
	assert.Equal(t, fixedpoint.MustFromString("0.88"), fill.LastPrice)
}

func TestProcessBook_EmptyBook(t *testing.T) {
	fill := ProcessBook(nil, fixedpoint.MustFromString("5"))

	assert.Zero(t, fill.FilledQuantity.Sign())
	assert.Zero(t, fill.TotalCost.Sign())
	assert.Zero(t, fill.LastPrice.Sign())
}

func TestProcessBook_NoTarget(t *testing.T) {
	for _, target := range []string{"0", "-1"} {
		fill := ProcessBook(testBook().Asks, fixedpoint.MustFromString(target))
		assert.Zero(t, fill.FilledQuantity.Sign(), "target %s", target)
		assert.Zero(t, fill.LastPrice.Sign(), "target %s", target)
	}
	fill := ProcessBook(testBook().Asks, nil)
	assert.Zero(t, fill.FilledQuantity.Sign())
}

func TestProcessBook_EmptyLevelDoesNotTouchLastPrice(t *testing.T) {
	depths := []types.DepthLevel{
		types.Level("0.5", "0"),
		types.Level("0.6", "5"),
	}
	fill := ProcessBook(depths, fixedpoint.MustFromString("1"))

	require.Equal(t, fixedpoint.MustFromString("1"), fill.FilledQuantity)
	assert.Equal(t, fixedpoint.MustFromString("0.6"), fill.LastPrice)
	assert.Equal(t, fixedpoint.MustFromString("0.6"), fill.TotalCost)
}

func TestSharesForValue(t *testing.T) {
	asks := testBook().Asks

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"budget inside first tier", "1", "2"},  // 1 / 0.5
		{"budget exactly one tier", "1.5", "3"}, // full tier, nothing left
		{"budget spans tiers", "2.38", "4"},     // 3 at 0.5 + 1 at 0.88
		{"budget beyond the book", "10", "7"},   // everything on offer
		{"fractional tail", "1.94", "3.5"},      // 3 at 0.5 + 0.44/0.88
		{"zero budget buys nothing", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sharesForValue(asks, fixedpoint.MustFromString(tt.value))
			assert.Equal(t, fixedpoint.MustFromString(tt.want), got)
		})
	}
}

func TestSharesForValue_SkipsUnpriceableLevels(t *testing.T) {
	asks := []types.DepthLevel{
		types.Level("0", "100"), // unpriceable, would divide by zero
		types.Level("0.5", "3"),
	}
	got := sharesForValue(asks, fixedpoint.MustFromString("1"))
	assert.Equal(t, fixedpoint.MustFromString("2"), got)
}
