package signing

import (
	"context"
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"

	"github.com/betbot/goclob/types"
)

// Signer is the signing strategy an order pipeline is built around: it
// carries the identity orders default to and produces exchange-accepted
// signatures. Implementations must be safe for concurrent use.
type Signer interface {
	// Address is the identity orders are stamped with. For an abstracted
	// account this is the account address, not the underlying key's.
	Address() common.Address
	SignatureType() types.SignatureType
	// SignDigest signs a 32-byte digest. The exchange expects v in
	// {27, 28}; abstracted schemes prepend their validator tag.
	SignDigest(digest []byte) ([]byte, error)
	// SignMessage signs arbitrary bytes with the personal-message prefix.
	SignMessage(message []byte) ([]byte, error)
}

// PrivateKeySigner signs directly with an externally-owned account key.
type PrivateKeySigner struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewPrivateKeySigner parses a hex private key, with or without 0x prefix.
func NewPrivateKeySigner(hexKey string) (*PrivateKeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}
	return &PrivateKeySigner{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

func (s *PrivateKeySigner) Address() common.Address { return s.addr }

func (s *PrivateKeySigner) SignatureType() types.SignatureType { return types.SignatureTypeEOA }

func (s *PrivateKeySigner) SignDigest(digest []byte) ([]byte, error) {
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return nil, err
	}
	// crypto.Sign yields v in {0, 1}; the contract side recovers with 27/28
	sig[64] += 27
	return sig, nil
}

func (s *PrivateKeySigner) SignMessage(message []byte) ([]byte, error) {
	return s.SignDigest(accounts.TextHash(message))
}

// WalletValidator is the on-chain collaborator that vouches for an
// abstracted account: it knows the account's registered owner and its own
// contract address tags every signature it must verify.
type WalletValidator interface {
	Address() common.Address
	Owner(ctx context.Context, account common.Address) (common.Address, error)
}

// AbstractedSigner signs on behalf of a contract wallet (proxy or safe). The
// underlying key signs the order digest wrapped in the validator's own
// domain, and the validator address is prepended so verifiers can route the
// check. Owner verification happens once, here, at construction.
type AbstractedSigner struct {
	inner     Signer
	account   common.Address
	validator common.Address
	sigType   types.SignatureType
	chain     types.Chain
}

// NewAbstractedSigner verifies that the inner key is the validator's
// registered owner of account and returns the wrapping strategy. A mismatch
// fails construction with ErrInvalidSigner; nothing is checked again later.
func NewAbstractedSigner(ctx context.Context, inner Signer, account common.Address, sigType types.SignatureType, chain types.Chain, validator WalletValidator) (*AbstractedSigner, error) {
	if inner == nil {
		return nil, types.ErrMissingSigner
	}
	if sigType != types.SignatureTypeProxy && sigType != types.SignatureTypeGnosisSafe {
		return nil, errors.Errorf("signature type %s is not an abstracted scheme", sigType)
	}
	owner, err := validator.Owner(ctx, account)
	if err != nil {
		return nil, errors.Wrap(err, "look up account owner")
	}
	if owner != inner.Address() {
		return nil, errors.Wrapf(types.ErrInvalidSigner,
			"owner %s, key %s", owner.Hex(), inner.Address().Hex())
	}
	return &AbstractedSigner{
		inner:     inner,
		account:   account,
		validator: validator.Address(),
		sigType:   sigType,
		chain:     chain,
	}, nil
}

func (s *AbstractedSigner) Address() common.Address { return s.account }

func (s *AbstractedSigner) SignatureType() types.SignatureType { return s.sigType }

func (s *AbstractedSigner) SignDigest(digest []byte) ([]byte, error) {
	wrapped, err := s.wrapDigest(digest)
	if err != nil {
		return nil, err
	}
	sig, err := s.inner.SignDigest(wrapped)
	if err != nil {
		return nil, err
	}
	return append(s.validator.Bytes(), sig...), nil
}

// SignMessage delegates to the key: attestations identify the key holder,
// not the wallet.
func (s *AbstractedSigner) SignMessage(message []byte) ([]byte, error) {
	return s.inner.SignMessage(message)
}

var walletDigestTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"SignedDigest": {
		{Name: "digest", Type: "bytes32"},
	},
}

// wrapDigest re-domains an order digest under the wallet validator so the
// resulting signature only verifies through that validator.
func (s *AbstractedSigner) wrapDigest(digest []byte) ([]byte, error) {
	typedData := apitypes.TypedData{
		Types:       walletDigestTypes,
		PrimaryType: "SignedDigest",
		Domain: apitypes.TypedDataDomain{
			Name:              "Polymarket Wallet Proxy",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(int64(s.chain)),
			VerifyingContract: s.validator.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"digest": hexutil.Encode(digest),
		},
	}
	wrapped, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, errors.Wrap(err, "wrap digest")
	}
	return wrapped, nil
}
