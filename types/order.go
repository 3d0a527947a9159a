package types

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

// Order is the canonical trade intent: the exact struct that is hashed,
// signed, and verified by the exchange contract. Amounts are integers in the
// token's smallest unit. A zero Taker means any taker may fill.
type Order struct {
	Salt          int64
	Maker         common.Address
	Signer        common.Address
	Taker         common.Address
	TokenID       *big.Int
	MakerAmount   *big.Int
	TakerAmount   *big.Int
	Expiration    int64
	Nonce         *big.Int
	FeeRateBps    *big.Int
	Side          Side
	SignatureType SignatureType
}

// SignedOrder is the immutable wire form of an order plus its signature.
// Every numeric field is serialized as a decimal-string integer so nothing
// loses precision crossing JSON boundaries; side and signatureType stay small
// integers per the exchange contract encoding.
type SignedOrder struct {
	Salt          string        `json:"salt"`
	Maker         string        `json:"maker"`
	Signer        string        `json:"signer"`
	Taker         string        `json:"taker"`
	TokenID       string        `json:"tokenId"`
	MakerAmount   string        `json:"makerAmount"`
	TakerAmount   string        `json:"takerAmount"`
	Expiration    string        `json:"expiration"`
	Nonce         string        `json:"nonce"`
	FeeRateBps    string        `json:"feeRateBps"`
	Side          Side          `json:"side"`
	SignatureType SignatureType `json:"signatureType"`
	Signature     string        `json:"signature"`
}

// Signed converts the order to its wire form with the given signature
// attached. The result is a value snapshot; mutating the source order
// afterwards does not affect it.
func (o *Order) Signed(signature string) *SignedOrder {
	return &SignedOrder{
		Salt:          strconv.FormatInt(o.Salt, 10),
		Maker:         o.Maker.Hex(),
		Signer:        o.Signer.Hex(),
		Taker:         o.Taker.Hex(),
		TokenID:       bigString(o.TokenID),
		MakerAmount:   bigString(o.MakerAmount),
		TakerAmount:   bigString(o.TakerAmount),
		Expiration:    strconv.FormatInt(o.Expiration, 10),
		Nonce:         bigString(o.Nonce),
		FeeRateBps:    bigString(o.FeeRateBps),
		Side:          o.Side,
		SignatureType: o.SignatureType,
		Signature:     signature,
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// PostOrderRequest is the submission envelope for a signed order.
type PostOrderRequest struct {
	Order     *SignedOrder `json:"order"`
	Owner     string       `json:"owner"`
	OrderType OrderType    `json:"orderType"`
}

// OrderResponse is the exchange's answer to an order submission.
type OrderResponse struct {
	Success           bool     `json:"success"`
	ErrorMsg          string   `json:"errorMsg"`
	OrderID           string   `json:"orderID"`
	TransactionHashes []string `json:"transactionsHashes"`
	Status            string   `json:"status"`
	TakingAmount      string   `json:"takingAmount"`
	MakingAmount      string   `json:"makingAmount"`
}

// CancelResponse reports which order ids were canceled and which were not,
// with a reason per failed id.
type CancelResponse struct {
	Canceled    []string          `json:"canceled"`
	NotCanceled map[string]string `json:"not_canceled"`
}

// OpenOrder is one resting order as reported by the exchange.
type OpenOrder struct {
	ID           string   `json:"id"`
	Status       string   `json:"status"`
	Owner        string   `json:"owner"`
	MakerAddress string   `json:"maker_address"`
	Market       string   `json:"market"`
	AssetID      string   `json:"asset_id"`
	Side         string   `json:"side"`
	OriginalSize string   `json:"original_size"`
	SizeMatched  string   `json:"size_matched"`
	Price        string   `json:"price"`
	Trades       []string `json:"associate_trades"`
	Outcome      string   `json:"outcome"`
	CreatedAt    int64    `json:"created_at"`
	Expiration   string   `json:"expiration"`
	OrderType    string   `json:"order_type"`
}

// OpenOrdersResponse is a cursor page of open orders.
type OpenOrdersResponse struct {
	Data       []OpenOrder `json:"data"`
	NextCursor string      `json:"next_cursor"`
	Limit      int         `json:"limit"`
	Count      int         `json:"count"`
}
