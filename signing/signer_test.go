package signing

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/goclob/types"
)

// Well-known development key (hardhat account #0). Safe to commit: it is
// public and holds nothing on any real chain.
const (
	testKeyHex  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddrHex = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func testSigner(t *testing.T) *PrivateKeySigner {
	t.Helper()
	signer, err := NewPrivateKeySigner(testKeyHex)
	require.NoError(t, err)
	return signer
}

// recoverSigner recovers the signing address from a 65-byte signature with v
// in {27, 28}, failing the test on malformed input.
func recoverSigner(t *testing.T, digest, sig []byte) common.Address {
	t.Helper()
	require.Len(t, sig, 65)
	require.Contains(t, []byte{27, 28}, sig[64])

	raw := make([]byte, 65)
	copy(raw, sig)
	raw[64] -= 27
	pub, err := crypto.SigToPub(digest, raw)
	require.NoError(t, err)
	return crypto.PubkeyToAddress(*pub)
}

// failingSigner errors on every signing call.
type failingSigner struct{}

func (failingSigner) Address() common.Address { return common.HexToAddress(testAddrHex) }

func (failingSigner) SignatureType() types.SignatureType { return types.SignatureTypeEOA }

func (failingSigner) SignDigest([]byte) ([]byte, error) { return nil, errors.New("key unavailable") }

func (failingSigner) SignMessage([]byte) ([]byte, error) { return nil, errors.New("key unavailable") }

// stubValidator answers owner lookups from fixed data.
type stubValidator struct {
	addr  common.Address
	owner common.Address
	err   error
}

func (v stubValidator) Address() common.Address { return v.addr }

func (v stubValidator) Owner(context.Context, common.Address) (common.Address, error) {
	return v.owner, v.err
}

func TestNewPrivateKeySigner(t *testing.T) {
	signer := testSigner(t)

	assert.Equal(t, common.HexToAddress(testAddrHex), signer.Address())
	assert.Equal(t, types.SignatureTypeEOA, signer.SignatureType())
}

func TestNewPrivateKeySigner_AcceptsHexPrefix(t *testing.T) {
	signer, err := NewPrivateKeySigner("0x" + testKeyHex)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddrHex), signer.Address())
}

func TestNewPrivateKeySigner_BadKey(t *testing.T) {
	_, err := NewPrivateKeySigner("not-a-key")
	assert.Error(t, err)
}

func TestPrivateKeySigner_SignDigest(t *testing.T) {
	signer := testSigner(t)
	digest := crypto.Keccak256([]byte("hello"))

	sig, err := signer.SignDigest(digest)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recoverSigner(t, digest, sig))
}

func TestPrivateKeySigner_SignMessage(t *testing.T) {
	signer := testSigner(t)
	message := []byte("gm")

	sig, err := signer.SignMessage(message)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recoverSigner(t, accounts.TextHash(message), sig))
}

func TestNewAbstractedSigner_ChecksOwner(t *testing.T) {
	key := testSigner(t)
	account := common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72")
	validator := stubValidator{
		addr:  common.HexToAddress("0x6A9e43030A4a7dcE23A9Ec7be1b3A9D62595EA4b"),
		owner: key.Address(),
	}

	signer, err := NewAbstractedSigner(context.Background(), key, account,
		types.SignatureTypeProxy, types.ChainPolygon, validator)
	require.NoError(t, err)

	assert.Equal(t, account, signer.Address())
	assert.Equal(t, types.SignatureTypeProxy, signer.SignatureType())
}

func TestNewAbstractedSigner_OwnerMismatch(t *testing.T) {
	key := testSigner(t)
	validator := stubValidator{
		addr:  common.HexToAddress("0x6A9e43030A4a7dcE23A9Ec7be1b3A9D62595EA4b"),
		owner: common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
	}

	_, err := NewAbstractedSigner(context.Background(), key,
		common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72"),
		types.SignatureTypeGnosisSafe, types.ChainPolygon, validator)
	assert.ErrorIs(t, err, types.ErrInvalidSigner)
}

func TestNewAbstractedSigner_OwnerLookupFailure(t *testing.T) {
	key := testSigner(t)
	validator := stubValidator{err: errors.New("rpc down")}

	_, err := NewAbstractedSigner(context.Background(), key,
		common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72"),
		types.SignatureTypeProxy, types.ChainPolygon, validator)
	assert.ErrorContains(t, err, "rpc down")
}

func TestNewAbstractedSigner_NilKey(t *testing.T) {
	_, err := NewAbstractedSigner(context.Background(), nil,
		common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72"),
		types.SignatureTypeProxy, types.ChainPolygon, stubValidator{})
	assert.ErrorIs(t, err, types.ErrMissingSigner)
}

func TestNewAbstractedSigner_RejectsDirectScheme(t *testing.T) {
	key := testSigner(t)
	validator := stubValidator{owner: key.Address()}

	_, err := NewAbstractedSigner(context.Background(), key,
		common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72"),
		types.SignatureTypeEOA, types.ChainPolygon, validator)
	assert.Error(t, err)
}

// The abstracted signature is validator address || key signature, where the
// key signs the digest re-domained under the wallet proxy. The expected
// wrapped digest is computed independently from the EIP-712 spec.
func TestAbstractedSigner_SignDigest(t *testing.T) {
	const wrappedDigest = "0x1f9a641516001634130dc1daf7130ba163561c8472d7e42b7c1c314dfb224701"

	key := testSigner(t)
	validator := stubValidator{
		addr:  common.HexToAddress("0x6A9e43030A4a7dcE23A9Ec7be1b3A9D62595EA4b"),
		owner: key.Address(),
	}
	signer, err := NewAbstractedSigner(context.Background(), key,
		common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72"),
		types.SignatureTypeProxy, types.ChainPolygon, validator)
	require.NoError(t, err)

	sig, err := signer.SignDigest(common.HexToHash(orderDigestPolygon).Bytes())
	require.NoError(t, err)

	require.Len(t, sig, 85)
	assert.Equal(t, validator.addr.Bytes(), sig[:20])
	assert.Equal(t, key.Address(),
		recoverSigner(t, common.HexToHash(wrappedDigest).Bytes(), sig[20:]))
}

func TestAbstractedSigner_SignMessageUsesKeyIdentity(t *testing.T) {
	key := testSigner(t)
	validator := stubValidator{
		addr:  common.HexToAddress("0x6A9e43030A4a7dcE23A9Ec7be1b3A9D62595EA4b"),
		owner: key.Address(),
	}
	signer, err := NewAbstractedSigner(context.Background(), key,
		common.HexToAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72"),
		types.SignatureTypeProxy, types.ChainPolygon, validator)
	require.NoError(t, err)

	message := []byte("gm")
	sig, err := signer.SignMessage(message)
	require.NoError(t, err)
	assert.Equal(t, key.Address(), recoverSigner(t, accounts.TextHash(message), sig))
}
