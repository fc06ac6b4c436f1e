package config

import (
	"github.com/oxwatch/balwatch/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Entities expands a network config into the monitored entities in
// configuration order: every address (native), then every (address, token)
// pair.
func (n NetworkConfig) Entities() []domain.Entity {
	entities := make([]domain.Entity, 0, len(n.Addresses)*(1+len(n.Tokens)))

	for _, addr := range n.Addresses {
		entities = append(entities, domain.Entity{
			Network:   n.Name,
			ChainID:   n.ChainID,
			Alias:     addr.Alias,
			Address:   addr.Address,
			Threshold: thresholdOf(addr.MinBalanceETH),
		})
	}

	for _, token := range n.Tokens {
		for _, addr := range n.Addresses {
			entities = append(entities, domain.Entity{
				Network:   n.Name,
				ChainID:   n.ChainID,
				Alias:     token.Alias,
				Address:   addr.Address,
				Contract:  token.Contract,
				Threshold: thresholdOf(token.MinBalance),
			})
		}
	}

	return entities
}

func thresholdOf(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}
