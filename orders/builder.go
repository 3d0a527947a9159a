package orders

import (
	"math/big"
	"math/rand"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/goclob/pkg/logger"
	"github.com/betbot/goclob/types"
)

const (
	// FarFutureExpiration is the sentinel for limit orders without a real
	// expiry: 2100-01-01T00:00:00Z.
	FarFutureExpiration int64 = 4102444800

	// marketOrderWindow is how long a market order stays valid. Market
	// amounts are priced off a snapshot; a longer life would let the book
	// drift arbitrarily far from the priced depth.
	marketOrderWindow = 5 * time.Minute
)

// Identity is the signing identity orders default to. For an abstracted
// account the address is the account's, not the underlying key's.
type Identity interface {
	Address() common.Address
	SignatureType() types.SignatureType
}

// SaltFunc produces order entropy in [0, 2^31).
type SaltFunc func() int64

// DefaultSalt draws pseudo-random salts from math/rand.
func DefaultSalt() int64 {
	return rand.Int63n(1 << 31)
}

// OrderInput is the caller-supplied part of an order. Amount fields depend
// on the strategy: LIMIT reads Price and Quantity; MARKET reads Quantity
// (share target, either side) or Value (collateral target, BUY only) plus
// Book. Zero-value Maker, Taker, ExpiresAt, Nonce, and FeeRateBps take
// defaults.
type OrderInput struct {
	TokenID  string
	Side     types.Side
	Price    *big.Int
	Quantity *big.Int
	Value    *big.Int
	Book     *types.Book

	Maker      common.Address
	Taker      common.Address
	ExpiresAt  int64
	Nonce      *big.Int
	FeeRateBps *big.Int
}

// Builder assembles canonical orders: it derives amounts for the requested
// strategy, resolves maker/signer against the configured identity, validates
// expirations, and stamps entropy. Builders are stateless between calls and
// safe for concurrent use.
type Builder struct {
	identity Identity
	salt     SaltFunc
}

// NewBuilder returns a builder bound to the given identity. A nil salt
// falls back to DefaultSalt; tests pass a deterministic one.
func NewBuilder(identity Identity, salt SaltFunc) *Builder {
	if salt == nil {
		salt = DefaultSalt
	}
	return &Builder{identity: identity, salt: salt}
}

// BuildOrder turns a strategy and input into a canonical order ready for
// typed-data hashing and signing.
func (b *Builder) BuildOrder(strategy types.Strategy, in OrderInput) (*types.Order, error) {
	if b == nil || b.identity == nil {
		return nil, types.ErrMissingSigner
	}
	signer := b.identity.Address()
	if signer == (common.Address{}) {
		return nil, types.ErrMissingSigner
	}
	sigType := b.identity.SignatureType()

	maker, err := b.resolveMaker(signer, sigType, in.Maker)
	if err != nil {
		return nil, err
	}

	tokenID := new(big.Int)
	if in.TokenID != "" {
		if _, ok := tokenID.SetString(in.TokenID, 10); !ok {
			return nil, errors.Errorf("token id %q is not a decimal integer", in.TokenID)
		}
	}

	var (
		amounts    *types.OrderAmounts
		expiration int64
	)
	switch strategy {
	case types.StrategyLimit:
		expiration, err = limitExpiration(in.ExpiresAt)
		if err != nil {
			return nil, err
		}
		amounts, err = GetLimitOrderAmounts(in.Side, in.Price, in.Quantity)
	case types.StrategyMarket:
		if in.ExpiresAt != 0 {
			logger.WithField("expires_at", in.ExpiresAt).
				Warn("market orders ignore caller expiration; pinning a five-minute window")
		}
		expiration = time.Now().Add(marketOrderWindow).Unix()
		if in.Value != nil {
			if in.Side != types.SideBuy {
				return nil, errors.New("value-target market orders are buy only")
			}
			amounts, err = GetMarketOrderAmountsByValue(in.Value, in.Book)
		} else {
			amounts, err = GetMarketOrderAmounts(in.Side, in.Quantity, in.Book)
		}
	default:
		return nil, errors.Errorf("unknown order strategy %q", strategy)
	}
	if err != nil {
		return nil, err
	}

	return &types.Order{
		Salt:          b.salt(),
		Maker:         maker,
		Signer:        signer,
		Taker:         in.Taker,
		TokenID:       tokenID,
		MakerAmount:   amounts.MakerAmount,
		TakerAmount:   amounts.TakerAmount,
		Expiration:    expiration,
		Nonce:         defaultBig(in.Nonce),
		FeeRateBps:    defaultBig(in.FeeRateBps),
		Side:          in.Side,
		SignatureType: sigType,
	}, nil
}

// resolveMaker applies the identity rules. Through an abstracted account
// maker and signer are pinned to the account address no matter what the
// caller passed; a direct key requires any explicit maker to equal the
// signer, since the exchange rejects orders funded by a third address.
func (b *Builder) resolveMaker(signer common.Address, sigType types.SignatureType, explicit common.Address) (common.Address, error) {
	if sigType != types.SignatureTypeEOA {
		if explicit != (common.Address{}) && explicit != signer {
			logger.WithFields(logrus.Fields{
				"maker":   explicit.Hex(),
				"account": signer.Hex(),
			}).Warn("abstracted account overrides caller maker")
		}
		return signer, nil
	}
	if explicit != (common.Address{}) && explicit != signer {
		return common.Address{}, errors.Wrapf(types.ErrMakerSignerMismatch,
			"maker %s vs signer %s", explicit.Hex(), signer.Hex())
	}
	return signer, nil
}

// limitExpiration validates a caller expiry or substitutes the far-future
// sentinel. A supplied expiry must be strictly in the future.
func limitExpiration(expiresAt int64) (int64, error) {
	if expiresAt == 0 {
		return FarFutureExpiration, nil
	}
	if expiresAt <= time.Now().Unix() {
		return 0, errors.Wrapf(types.ErrInvalidExpiration, "expires_at %d", expiresAt)
	}
	return expiresAt, nil
}

func defaultBig(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
