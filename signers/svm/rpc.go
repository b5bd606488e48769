package svm

import (
	"context"
	"errors"
	"fmt"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	x402 "github.com/spikesonicguest/blip-x402-go"
	x402svm "github.com/spikesonicguest/blip-x402-go/mechanisms/svm"
)

// DefaultConfirmTimeout bounds Confirm when the caller's context has no deadline.
const DefaultConfirmTimeout = 90 * time.Second

// RPCClient is the subset of the solana-go RPC client the ledger uses.
type RPCClient interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
}

// RPCLedger implements the ledger collaborators over Solana JSON-RPC.
type RPCLedger struct {
	client         RPCClient
	commitment     rpc.CommitmentType
	pollInterval   time.Duration
	confirmTimeout time.Duration
	logger         *zap.Logger
}

// RPCOption configures an RPCLedger
type RPCOption func(*RPCLedger)

// WithCommitment sets the commitment level for reads and confirmation
func WithCommitment(commitment rpc.CommitmentType) RPCOption {
	return func(l *RPCLedger) {
		l.commitment = commitment
	}
}

// WithPollInterval sets how often Confirm polls signature status
func WithPollInterval(d time.Duration) RPCOption {
	return func(l *RPCLedger) {
		if d > 0 {
			l.pollInterval = d
		}
	}
}

// WithConfirmTimeout sets the longest Confirm waits for a signature
func WithConfirmTimeout(d time.Duration) RPCOption {
	return func(l *RPCLedger) {
		if d > 0 {
			l.confirmTimeout = d
		}
	}
}

// WithLogger sets the ledger's logger
func WithLogger(logger *zap.Logger) RPCOption {
	return func(l *RPCLedger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewRPCLedger wraps an RPC client
func NewRPCLedger(client RPCClient, opts ...RPCOption) *RPCLedger {
	l := &RPCLedger{
		client:         client,
		commitment:     rpc.CommitmentConfirmed,
		pollInterval:   500 * time.Millisecond,
		confirmTimeout: DefaultConfirmTimeout,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DialRPCLedger creates a ledger for the JSON-RPC endpoint at rpcURL
func DialRPCLedger(rpcURL string, opts ...RPCOption) *RPCLedger {
	return NewRPCLedger(rpc.New(rpcURL), opts...)
}

// GetLatestAnchor returns the latest blockhash
func (l *RPCLedger) GetLatestAnchor(ctx context.Context) (*x402svm.RecentAnchor, error) {
	out, err := l.client.GetLatestBlockhash(ctx, l.commitment)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	if out == nil || out.Value == nil {
		return nil, fmt.Errorf("empty blockhash response")
	}
	return &x402svm.RecentAnchor{
		Blockhash:            out.Value.Blockhash,
		LastValidBlockHeight: out.Value.LastValidBlockHeight,
	}, nil
}

// GetBalance returns the lamport balance of address
func (l *RPCLedger) GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	out, err := l.client.GetBalance(ctx, address, l.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	if out == nil {
		return 0, fmt.Errorf("empty balance response")
	}
	return out.Value, nil
}

// SubmitSigned broadcasts a signed transaction
func (l *RPCLedger) SubmitSigned(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := l.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: l.commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	l.logger.Info("transaction submitted", zap.String("signature", sig.String()))
	return sig, nil
}

// Confirm polls the status of sig until it reaches the ledger's commitment,
// fails on chain, the block height passes anchor.LastValidBlockHeight, the
// confirm timeout elapses or ctx is done. Expiry and timeout fail with
// x402.ErrTransactionExpired.
func (l *RPCLedger) Confirm(ctx context.Context, sig solana.Signature, anchor x402svm.RecentAnchor) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		done, err := l.checkStatus(ctx, sig)
		if done {
			return true, nil
		}
		if err != nil && ctx.Err() == nil {
			return false, err
		}
		if err := l.checkExpiry(ctx, sig, anchor); err != nil {
			return false, err
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return false, fmt.Errorf("%w: %s: %w", x402.ErrTransactionExpired, sig, ctx.Err())
			}
			return false, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RPCLedger) checkExpiry(ctx context.Context, sig solana.Signature, anchor x402svm.RecentAnchor) error {
	if anchor.LastValidBlockHeight == 0 {
		return nil
	}
	height, err := l.client.GetBlockHeight(ctx, l.commitment)
	if err != nil {
		l.logger.Debug("block height unavailable", zap.Error(err))
		return nil
	}
	if height > anchor.LastValidBlockHeight {
		return fmt.Errorf("%w: %s: block height %d past %d",
			x402.ErrTransactionExpired, sig, height, anchor.LastValidBlockHeight)
	}
	return nil
}

func (l *RPCLedger) checkStatus(ctx context.Context, sig solana.Signature) (bool, error) {
	out, err := l.client.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return false, fmt.Errorf("failed to get signature status: %w", err)
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return false, nil
	}

	status := out.Value[0]
	if status.Err != nil {
		return false, fmt.Errorf("transaction %s failed: %v", sig, status.Err)
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusFinalized:
		return true, nil
	case rpc.ConfirmationStatusConfirmed:
		return l.commitment != rpc.CommitmentFinalized, nil
	case rpc.ConfirmationStatusProcessed:
		return l.commitment == rpc.CommitmentProcessed, nil
	}
	return false, nil
}

var (
	_ x402svm.Ledger            = (*RPCLedger)(nil)
	_ x402svm.BalanceReader     = (*RPCLedger)(nil)
	_ x402svm.TransactionSigner = (*ClientSigner)(nil)
)
