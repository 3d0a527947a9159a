// Package signing turns canonical orders into EIP-712 typed data, hashes
// them, and produces the signatures the exchange verifies on-chain. It also
// builds the L1/L2 authentication material for the exchange's HTTP API.
package signing

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"

	"github.com/betbot/goclob/types"
)

// Domain identity of the exchange's order signature.
const (
	DomainName    = "Polymarket CTF Exchange"
	DomainVersion = "1"
)

// orderTypes is the EIP-712 type set the exchange contract hashes orders
// with. Field order matters: it is part of the type hash.
var orderTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"Order": {
		{Name: "salt", Type: "uint256"},
		{Name: "maker", Type: "address"},
		{Name: "signer", Type: "address"},
		{Name: "taker", Type: "address"},
		{Name: "tokenId", Type: "uint256"},
		{Name: "makerAmount", Type: "uint256"},
		{Name: "takerAmount", Type: "uint256"},
		{Name: "expiration", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "feeRateBps", Type: "uint256"},
		{Name: "side", Type: "uint8"},
		{Name: "signatureType", Type: "uint8"},
	},
}

// TypedDataOptions routes an order's signature to the right exchange
// variant.
type TypedDataOptions struct {
	// NegRisk selects the neg-risk exchange as verifying contract.
	NegRisk bool
}

// BuildTypedData assembles the EIP-712 structure for an order. The domain's
// verifying contract is the plain or neg-risk exchange depending on options,
// so a signature can never be replayed against the other variant.
func BuildTypedData(order *types.Order, chain types.Chain, opts TypedDataOptions) (*apitypes.TypedData, error) {
	if order == nil {
		return nil, errors.New("nil order")
	}
	contracts, err := Contracts(chain)
	if err != nil {
		return nil, err
	}

	return &apitypes.TypedData{
		Types:       orderTypes,
		PrimaryType: "Order",
		Domain: apitypes.TypedDataDomain{
			Name:              DomainName,
			Version:           DomainVersion,
			ChainId:           math.NewHexOrDecimal256(int64(chain)),
			VerifyingContract: contracts.ExchangeAddress(opts.NegRisk).Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"salt":          big.NewInt(order.Salt),
			"maker":         order.Maker.Hex(),
			"signer":        order.Signer.Hex(),
			"taker":         order.Taker.Hex(),
			"tokenId":       bigOrZero(order.TokenID),
			"makerAmount":   bigOrZero(order.MakerAmount),
			"takerAmount":   bigOrZero(order.TakerAmount),
			"expiration":    big.NewInt(order.Expiration),
			"nonce":         bigOrZero(order.Nonce),
			"feeRateBps":    bigOrZero(order.FeeRateBps),
			"side":          big.NewInt(int64(order.Side)),
			"signatureType": big.NewInt(int64(order.SignatureType)),
		},
	}, nil
}

// BuildTypedDataHash computes the domain-separated digest of the typed data.
// The digest is both the order's unique identifier and the payload that gets
// signed. Identical typed data always hashes identically.
func BuildTypedDataHash(typedData *apitypes.TypedData) (common.Hash, error) {
	if typedData == nil {
		return common.Hash{}, fmt.Errorf("%w: nil typed data", types.ErrFailedTypedDataEncoder)
	}
	digest, _, err := apitypes.TypedDataAndHash(*typedData)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %w", types.ErrFailedTypedDataEncoder, err)
	}
	return common.BytesToHash(digest), nil
}

// SignTypedDataOrder hashes the typed data and signs the digest, returning a
// 0x-prefixed hex signature in the exchange's wire encoding.
func SignTypedDataOrder(signer Signer, typedData *apitypes.TypedData) (string, error) {
	if signer == nil {
		return "", types.ErrMissingSigner
	}
	digest, err := BuildTypedDataHash(typedData)
	if err != nil {
		return "", err
	}
	sig, err := signer.SignDigest(digest.Bytes())
	if err != nil {
		return "", fmt.Errorf("%w: %w", types.ErrFailedOrderSign, err)
	}
	return "0x" + common.Bytes2Hex(sig), nil
}

// SignOrder runs the full pipeline for an assembled order: typed data,
// digest, signature, wire form.
func SignOrder(signer Signer, order *types.Order, chain types.Chain, opts TypedDataOptions) (*types.SignedOrder, error) {
	typedData, err := BuildTypedData(order, chain, opts)
	if err != nil {
		return nil, err
	}
	sig, err := SignTypedDataOrder(signer, typedData)
	if err != nil {
		return nil, err
	}
	return order.Signed(sig), nil
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
