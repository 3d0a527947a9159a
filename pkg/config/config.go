// Package config loads SDK settings from a YAML file and the environment.
// Environment variables win over file values, so deployments can override a
// checked-in config without editing it.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/betbot/goclob/pkg/logger"
	"github.com/betbot/goclob/types"
)

// Config is everything a trading client needs: endpoint, chain, signing
// identity, API credentials, and logging.
type Config struct {
	Host    string      `yaml:"host"`
	ChainID types.Chain `yaml:"chain_id"`

	// Exactly one of PrivateKey or Mnemonic supplies the signing key.
	PrivateKey    string `yaml:"private_key"`
	Mnemonic      string `yaml:"mnemonic"`
	MnemonicIndex uint32 `yaml:"mnemonic_index"`

	// Funder is the proxy or safe address holding the collateral. Empty
	// means the key's own address trades directly.
	Funder        string              `yaml:"funder"`
	SignatureType types.SignatureType `yaml:"signature_type"`

	Credentials types.APICredentials `yaml:"credentials"`

	Log logger.Config `yaml:"log"`
}

// Load reads the optional YAML file, an optional .env file, and the
// environment, in increasing priority. An empty path skips the file.
func Load(path string) (*Config, error) {
	// missing .env is fine; explicit configuration still applies
	_ = godotenv.Load()

	cfg := &Config{
		Host:    "https://clob.polymarket.com",
		ChainID: types.ChainPolygon,
		Log:     logger.Config{Level: "info"},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Host = getEnv("CLOB_HOST", c.Host)
	c.ChainID = types.Chain(parseIntEnv("CLOB_CHAIN_ID", int(c.ChainID)))

	c.PrivateKey = getEnv("WALLET_PRIVATE_KEY", c.PrivateKey)
	c.Mnemonic = getEnv("WALLET_MNEMONIC", c.Mnemonic)
	c.MnemonicIndex = uint32(parseIntEnv("WALLET_MNEMONIC_INDEX", int(c.MnemonicIndex)))
	c.Funder = getEnv("WALLET_FUNDER_ADDRESS", c.Funder)
	c.SignatureType = types.SignatureType(parseIntEnv("WALLET_SIGNATURE_TYPE", int(c.SignatureType)))

	c.Credentials.Key = getEnv("CLOB_API_KEY", c.Credentials.Key)
	c.Credentials.Secret = getEnv("CLOB_API_SECRET", c.Credentials.Secret)
	c.Credentials.Passphrase = getEnv("CLOB_API_PASSPHRASE", c.Credentials.Passphrase)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.OutputFile = getEnv("LOG_FILE", c.Log.OutputFile)
}

// Validate checks the settings that every client needs. API credentials are
// optional here because they can be derived at runtime.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("CLOB_HOST is empty")
	}
	if c.ChainID != types.ChainPolygon && c.ChainID != types.ChainAmoy {
		return errors.Errorf("unsupported chain id %d", c.ChainID)
	}
	if c.PrivateKey == "" && c.Mnemonic == "" {
		return errors.New("either WALLET_PRIVATE_KEY or WALLET_MNEMONIC is required")
	}
	if c.PrivateKey != "" && c.Mnemonic != "" {
		return errors.New("WALLET_PRIVATE_KEY and WALLET_MNEMONIC are mutually exclusive")
	}
	switch c.SignatureType {
	case types.SignatureTypeEOA:
		if c.Funder != "" {
			return errors.New("WALLET_FUNDER_ADDRESS only applies to proxy or safe accounts")
		}
	case types.SignatureTypeProxy, types.SignatureTypeGnosisSafe:
		if c.Funder == "" {
			return errors.New("WALLET_FUNDER_ADDRESS is required for proxy and safe accounts")
		}
	default:
		return errors.Errorf("unknown signature type %d", c.SignatureType)
	}
	return nil
}

// HasCredentials reports whether API credentials are fully configured.
func (c *Config) HasCredentials() bool {
	return c.Credentials.Validate() == nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseIntEnv(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
