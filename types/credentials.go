package types

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// APICredentials authenticate level-2 (API key) requests. Key is a UUID
// issued by the exchange, Secret a base64url HMAC key.
type APICredentials struct {
	Key        string `json:"apiKey" yaml:"api_key"`
	Secret     string `json:"secret" yaml:"api_secret"`
	Passphrase string `json:"passphrase" yaml:"api_passphrase"`
}

// Validate checks the credential shape without calling the exchange.
func (c *APICredentials) Validate() error {
	if c == nil {
		return errors.New("nil api credentials")
	}
	if _, err := uuid.Parse(c.Key); err != nil {
		return errors.Wrap(err, "api key is not a uuid")
	}
	if c.Secret == "" {
		return errors.New("api secret is empty")
	}
	if c.Passphrase == "" {
		return errors.New("api passphrase is empty")
	}
	return nil
}

// L1Headers authenticate key-derivation requests with an EIP-712 attestation
// signed by the account's key.
type L1Headers struct {
	Address   string `json:"POLY_ADDRESS"`
	Signature string `json:"POLY_SIGNATURE"`
	Timestamp string `json:"POLY_TIMESTAMP"`
	Nonce     string `json:"POLY_NONCE"`
}

// L2Headers authenticate trading requests with an HMAC over
// timestamp+method+path+body keyed by the API secret.
type L2Headers struct {
	Address    string `json:"POLY_ADDRESS"`
	Signature  string `json:"POLY_SIGNATURE"`
	Timestamp  string `json:"POLY_TIMESTAMP"`
	APIKey     string `json:"POLY_API_KEY"`
	Passphrase string `json:"POLY_PASSPHRASE"`
}

// RequestArgs is the portion of an HTTP request covered by the L2 HMAC.
type RequestArgs struct {
	Method string
	Path   string
	Body   string
}
