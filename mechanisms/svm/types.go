package svm

import (
	"context"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
)

// NetworkConfig contains network-specific configuration
type NetworkConfig struct {
	CAIP2  string
	RPCURL string
}

// RecentAnchor is the recent blockhash a transaction is bound to.
type RecentAnchor struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

// AnchorReader fetches the recent blockhash. It is the only ledger read the
// payload builder performs.
type AnchorReader interface {
	GetLatestAnchor(ctx context.Context) (*RecentAnchor, error)
}

// BalanceReader reads an account's balance in lamports.
type BalanceReader interface {
	GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error)
}

// Ledger is the full ledger collaborator: anchor reads, submission and confirmation.
// Confirm waits for sig until it lands or the anchor it was built on expires.
type Ledger interface {
	AnchorReader
	SubmitSigned(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	Confirm(ctx context.Context, sig solana.Signature, anchor RecentAnchor) (bool, error)
}

// TransactionSigner signs a transaction in place on behalf of one account.
type TransactionSigner interface {
	Address() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// ExactSvmPayload is the scheme-specific body of an exact SVM payment.
type ExactSvmPayload struct {
	// Transaction is the base-58 encoding of the unsigned serialized transaction.
	Transaction string `json:"transaction"`
	Payer       string `json:"payer"`
	// Amount is in lamports.
	Amount string `json:"amount"`
}

// ToMap converts the payload to the generic payload map
func (p *ExactSvmPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"transaction": p.Transaction,
		"payer":       p.Payer,
		"amount":      p.Amount,
	}
}

// PayloadFromMap creates an ExactSvmPayload from a payload map
func PayloadFromMap(data map[string]interface{}) (*ExactSvmPayload, error) {
	payload := &ExactSvmPayload{}
	fields := []struct {
		key string
		dst *string
	}{
		{"transaction", &payload.Transaction},
		{"payer", &payload.Payer},
		{"amount", &payload.Amount},
	}
	for _, f := range fields {
		v, ok := data[f.key].(string)
		if !ok {
			return nil, fmt.Errorf("missing or invalid %s field", f.key)
		}
		*f.dst = v
	}
	return payload, nil
}

// GetNetworkConfig returns the configuration for a network name or CAIP-2 id
func GetNetworkConfig(network string) (*NetworkConfig, error) {
	if config, ok := NetworkConfigs[network]; ok {
		return &config, nil
	}
	for _, config := range NetworkConfigs {
		if config.CAIP2 == network {
			c := config
			return &c, nil
		}
	}
	return nil, fmt.Errorf("unsupported network: %s", network)
}
