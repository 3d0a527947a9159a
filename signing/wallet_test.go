package signing

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// standard development mnemonic; index 0 is the same account as testKeyHex
const testMnemonic = "test test test test test test test test test test test junk"

func TestNewSignerFromMnemonic(t *testing.T) {
	signer, err := NewSignerFromMnemonic(testMnemonic, 0)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddrHex), signer.Address())
}

func TestNewSignerFromMnemonic_Index(t *testing.T) {
	signer, err := NewSignerFromMnemonic(testMnemonic, 1)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"), signer.Address())
}

func TestNewSignerFromMnemonic_Invalid(t *testing.T) {
	_, err := NewSignerFromMnemonic("definitely not twelve valid words", 0)
	assert.Error(t, err)
}
