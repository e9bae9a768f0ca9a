package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAsset_Validate(t *testing.T) {
	tests := []struct {
		name    string
		asset   Asset
		wantErr bool
	}{
		{
			name:  "manual asset passes",
			asset: Asset{ID: uuid.New(), Name: "Savings", Currency: "EUR"},
		},
		{
			name: "on-chain asset with both fields passes",
			asset: Asset{
				ID: uuid.New(), Name: "Cold Wallet", Currency: "BTC",
				ChainAddress: "bc1qexample", ChainID: "bitcoin",
			},
		},
		{
			name:    "empty name fails",
			asset:   Asset{ID: uuid.New(), Currency: "EUR"},
			wantErr: true,
		},
		{
			name:    "empty currency fails",
			asset:   Asset{ID: uuid.New(), Name: "Savings"},
			wantErr: true,
		},
		{
			name: "chain address without chain id fails",
			asset: Asset{
				ID: uuid.New(), Name: "Wallet", Currency: "BTC",
				ChainAddress: "bc1qexample",
			},
			wantErr: true,
		},
		{
			name: "chain id without chain address fails",
			asset: Asset{
				ID: uuid.New(), Name: "Wallet", Currency: "BTC",
				ChainID: "bitcoin",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.asset.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
