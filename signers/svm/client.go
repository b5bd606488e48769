// Package svm provides Solana wallet and ledger collaborators for the
// payment client.
package svm

import (
	"context"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ClientSigner signs transactions with an in-memory ed25519 keypair.
type ClientSigner struct {
	privateKey solana.PrivateKey
	address    solana.PublicKey
}

// NewClientSignerFromPrivateKey creates a client signer from a base58-encoded
// 64-byte secret key (the format of Solana CLI keypair files and wallet exports).
//
// Example:
//
//	signer, err := svm.NewClientSignerFromPrivateKey(os.Getenv("SOLANA_PRIVATE_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewClientSignerFromPrivateKey(privateKeyBase58 string) (*ClientSigner, error) {
	raw, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("invalid private key: expected 64 bytes, got %d", len(raw))
	}

	privateKey := solana.PrivateKey(raw)
	return &ClientSigner{
		privateKey: privateKey,
		address:    privateKey.PublicKey(),
	}, nil
}

// NewRandomClientSigner creates a signer with a fresh keypair
func NewRandomClientSigner() (*ClientSigner, error) {
	wallet := solana.NewWallet()
	return &ClientSigner{
		privateKey: wallet.PrivateKey,
		address:    wallet.PublicKey(),
	}, nil
}

// Address returns the public key of the signer.
func (s *ClientSigner) Address() solana.PublicKey {
	return s.address
}

// SignTransaction adds the signer's signature to tx in place. The signature
// slots are grown to the number of required signatures if needed.
func (s *ClientSigner) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	messageContent, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	signature, err := s.privateKey.Sign(messageContent)
	if err != nil {
		return fmt.Errorf("failed to sign message: %w", err)
	}

	accountIndex, err := tx.GetAccountIndex(s.address)
	if err != nil {
		return fmt.Errorf("signer %s not in transaction: %w", s.address, err)
	}
	if int(accountIndex) >= int(tx.Message.Header.NumRequiredSignatures) {
		return fmt.Errorf("signer %s is not a required signer", s.address)
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Signatures) < required {
		signatures := make([]solana.Signature, required)
		copy(signatures, tx.Signatures)
		tx.Signatures = signatures
	}
	tx.Signatures[accountIndex] = signature
	return nil
}
