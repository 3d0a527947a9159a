package signing

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
	"github.com/pkg/errors"
)

// NewSignerFromMnemonic derives a key from a BIP-39 mnemonic at the standard
// ethereum path m/44'/60'/0'/0/index and wraps it as a PrivateKeySigner.
func NewSignerFromMnemonic(mnemonic string, index uint32) (*PrivateKeySigner, error) {
	wallet, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return nil, errors.Wrap(err, "open wallet")
	}
	path, err := hdwallet.ParseDerivationPath(fmt.Sprintf("m/44'/60'/0'/0/%d", index))
	if err != nil {
		return nil, errors.Wrap(err, "parse derivation path")
	}
	account, err := wallet.Derive(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "derive account")
	}
	key, err := wallet.PrivateKey(account)
	if err != nil {
		return nil, errors.Wrap(err, "export key")
	}
	return &PrivateKeySigner{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}, nil
}
