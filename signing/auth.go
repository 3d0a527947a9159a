package signing

import (
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"

	"github.com/betbot/goclob/types"
)

// Key-control attestation domain. Signing it proves control of the wallet
// when deriving or creating API credentials.
const (
	authDomainName = "ClobAuthDomain"
	authVersion    = "1"
	authMessage    = "This message attests that I control the given wallet"
)

var authTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
	},
	"ClobAuth": {
		{Name: "address", Type: "address"},
		{Name: "timestamp", Type: "string"},
		{Name: "nonce", Type: "uint256"},
		{Name: "message", Type: "string"},
	},
}

// BuildAuthSignature signs the key-control attestation for the given moment
// and nonce.
func BuildAuthSignature(signer Signer, chain types.Chain, timestamp int64, nonce int64) (string, error) {
	if signer == nil {
		return "", types.ErrMissingSigner
	}

	typedData := apitypes.TypedData{
		Types:       authTypes,
		PrimaryType: "ClobAuth",
		Domain: apitypes.TypedDataDomain{
			Name:    authDomainName,
			Version: authVersion,
			ChainId: math.NewHexOrDecimal256(int64(chain)),
		},
		Message: apitypes.TypedDataMessage{
			"address":   signer.Address().Hex(),
			"timestamp": strconv.FormatInt(timestamp, 10),
			"nonce":     math.NewHexOrDecimal256(nonce),
			"message":   authMessage,
		},
	}

	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return "", errors.Wrap(err, "hash auth attestation")
	}
	sig, err := signer.SignDigest(digest)
	if err != nil {
		return "", errors.Wrap(err, "sign auth attestation")
	}
	return "0x" + common.Bytes2Hex(sig), nil
}

// CreateL1Headers builds the headers for API-key derivation: address,
// attestation signature, timestamp, nonce.
func CreateL1Headers(signer Signer, chain types.Chain, nonce int64) (*types.L1Headers, error) {
	ts := time.Now().Unix()
	sig, err := BuildAuthSignature(signer, chain, ts, nonce)
	if err != nil {
		return nil, err
	}
	return &types.L1Headers{
		Address:   signer.Address().Hex(),
		Signature: sig,
		Timestamp: strconv.FormatInt(ts, 10),
		Nonce:     strconv.FormatInt(nonce, 10),
	}, nil
}

// CreateL2Headers builds the HMAC headers that authenticate trading
// requests under the given API credentials.
func CreateL2Headers(address common.Address, creds *types.APICredentials, args types.RequestArgs) (*types.L2Headers, error) {
	if creds == nil {
		return nil, errors.New("nil api credentials")
	}
	ts := time.Now().Unix()
	sig, err := BuildHMACSignature(creds.Secret, ts, args.Method, args.Path, args.Body)
	if err != nil {
		return nil, err
	}
	return &types.L2Headers{
		Address:    address.Hex(),
		Signature:  sig,
		Timestamp:  strconv.FormatInt(ts, 10),
		APIKey:     creds.Key,
		Passphrase: creds.Passphrase,
	}, nil
}
