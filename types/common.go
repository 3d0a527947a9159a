package types

// Side is the order direction. It is encoded as a small integer both in the
// signed order struct and on the wire: BUY=0, SELL=1.
type Side int

const (
	SideBuy  Side = 0
	SideSell Side = 1
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	}
	return "UNKNOWN"
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Strategy selects how order amounts are derived: LIMIT prices against a
// caller-supplied price, MARKET prices against a book snapshot.
type Strategy string

const (
	StrategyLimit  Strategy = "LIMIT"
	StrategyMarket Strategy = "MARKET"
)

// OrderType is the time-in-force submitted alongside a signed order.
type OrderType string

const (
	OrderTypeGTC OrderType = "GTC" // good till cancel
	OrderTypeFOK OrderType = "FOK" // fill or kill
	OrderTypeGTD OrderType = "GTD" // good till date
	OrderTypeFAK OrderType = "FAK" // fill and kill
)

// Chain is the EVM network the exchange contracts are deployed on.
type Chain int

const (
	ChainPolygon Chain = 137
	ChainAmoy    Chain = 80002
)

// SignatureType discriminates the key scheme the exchange uses to verify an
// order signature: EOA=0, PROXY=1, GNOSIS_SAFE=2.
type SignatureType int

const (
	SignatureTypeEOA        SignatureType = 0 // direct externally-owned account
	SignatureTypeProxy      SignatureType = 1 // proxy wallet owned by an EOA
	SignatureTypeGnosisSafe SignatureType = 2 // safe multisig proxy wallet
)

func (t SignatureType) String() string {
	switch t {
	case SignatureTypeEOA:
		return "EOA"
	case SignatureTypeProxy:
		return "PROXY"
	case SignatureTypeGnosisSafe:
		return "GNOSIS_SAFE"
	}
	return "UNKNOWN"
}
