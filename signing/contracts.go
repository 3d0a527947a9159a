package signing

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/betbot/goclob/types"
)

// ContractConfig holds one chain's protocol deployment. The exchange comes
// in two variants: the plain CTF exchange and the neg-risk exchange that
// settles winner-take-all multi-outcome markets through the adapter.
type ContractConfig struct {
	Exchange          common.Address
	NegRiskExchange   common.Address
	NegRiskAdapter    common.Address
	Collateral        common.Address
	ConditionalTokens common.Address
}

var polygonContracts = ContractConfig{
	Exchange:          common.HexToAddress("0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E"),
	NegRiskExchange:   common.HexToAddress("0xC5d563A36AE78145C45a50134d48A1215220f80a"),
	NegRiskAdapter:    common.HexToAddress("0xd91E80cF2E7be2e162c6513ceD06f1dD0dA35296"),
	Collateral:        common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"),
	ConditionalTokens: common.HexToAddress("0x4D97DCd97eC945f40cF65F87097ACe5EA0476045"),
}

var amoyContracts = ContractConfig{
	Exchange:          common.HexToAddress("0xdFE02Eb6733538f8Ea35D585af8DE5958AD99E40"),
	NegRiskExchange:   common.HexToAddress("0xC5d563A36AE78145C45a50134d48A1215220f80a"),
	NegRiskAdapter:    common.HexToAddress("0xd91E80cF2E7be2e162c6513ceD06f1dD0dA35296"),
	Collateral:        common.HexToAddress("0x9c4e1703476e875070ee25b56a58b008cfb8fa78"),
	ConditionalTokens: common.HexToAddress("0x69308FB512518e39F9b16112fA8d994F4e2Bf8bB"),
}

// Contracts returns the deployment for the given chain.
func Contracts(chain types.Chain) (*ContractConfig, error) {
	switch chain {
	case types.ChainPolygon:
		return &polygonContracts, nil
	case types.ChainAmoy:
		return &amoyContracts, nil
	default:
		return nil, errors.Errorf("no contract config for chain %d", chain)
	}
}

// ExchangeAddress selects the verifying contract for the market variant: the
// neg-risk exchange for multi-outcome markets, the plain exchange otherwise.
func (c *ContractConfig) ExchangeAddress(negRisk bool) common.Address {
	if negRisk {
		return c.NegRiskExchange
	}
	return c.Exchange
}
