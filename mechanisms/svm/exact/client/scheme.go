package client

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	x402 "github.com/spikesonicguest/blip-x402-go"
	"github.com/spikesonicguest/blip-x402-go/mechanisms/svm"
)

// ExactSvmScheme builds unsigned native SOL transfer payloads for the exact scheme
type ExactSvmScheme struct {
	anchors svm.AnchorReader
	logger  *zap.Logger
}

// Option configures an ExactSvmScheme
type Option func(*ExactSvmScheme)

// WithLogger sets the logger used for payload construction
func WithLogger(logger *zap.Logger) Option {
	return func(s *ExactSvmScheme) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewExactSvmScheme creates a new ExactSvmScheme reading blockhashes from anchors
func NewExactSvmScheme(anchors svm.AnchorReader, opts ...Option) *ExactSvmScheme {
	s := &ExactSvmScheme{
		anchors: anchors,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scheme returns the scheme identifier
func (c *ExactSvmScheme) Scheme() string {
	return x402.SchemeExact
}

// CreatePaymentPayload builds a single-transfer transaction from payer to
// requirements.PayTo for requirements.MaxAmountRequired lamports, bound to the
// latest blockhash with payer as fee payer. The transaction is not signed.
func (c *ExactSvmScheme) CreatePaymentPayload(
	ctx context.Context,
	payer solana.PublicKey,
	requirements x402.PaymentRequirements,
) (x402.PaymentPayload, error) {
	recipient, err := solana.PublicKeyFromBase58(requirements.PayTo)
	if err != nil {
		return x402.PaymentPayload{}, fmt.Errorf("%w: payTo %q: %v", x402.ErrInvalidAddress, requirements.PayTo, err)
	}

	lamports, err := strconv.ParseUint(requirements.MaxAmountRequired, 10, 64)
	if err != nil {
		return x402.PaymentPayload{}, fmt.Errorf("%w: %q", x402.ErrInvalidAmount, requirements.MaxAmountRequired)
	}

	tx, anchor, err := c.BuildTransfer(ctx, payer, recipient, lamports)
	if err != nil {
		return x402.PaymentPayload{}, err
	}

	encoded, err := EncodeUnsignedTransaction(tx)
	if err != nil {
		return x402.PaymentPayload{}, err
	}

	c.logger.Debug("built payment transaction",
		zap.String("network", requirements.Network),
		zap.String("payer", payer.String()),
		zap.String("payTo", recipient.String()),
		zap.Uint64("lamports", lamports),
		zap.String("blockhash", anchor.Blockhash.String()),
	)

	svmPayload := &svm.ExactSvmPayload{
		Transaction: encoded,
		Payer:       payer.String(),
		Amount:      strconv.FormatUint(lamports, 10),
	}

	return x402.PaymentPayload{
		X402Version: x402.ProtocolVersion,
		Scheme:      x402.SchemeExact,
		Network:     requirements.Network,
		Payload:     svmPayload.ToMap(),
	}, nil
}

// BuildTransfer builds an unsigned transaction moving lamports from payer to
// recipient, with payer as fee payer, bound to the latest blockhash.
func (c *ExactSvmScheme) BuildTransfer(
	ctx context.Context,
	payer solana.PublicKey,
	recipient solana.PublicKey,
	lamports uint64,
) (*solana.Transaction, *svm.RecentAnchor, error) {
	anchor, err := c.anchors.GetLatestAnchor(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", x402.ErrLedgerUnavailable, err)
	}

	tx, err := solana.NewTransactionBuilder().
		AddInstruction(system.NewTransferInstruction(lamports, payer, recipient).Build()).
		SetRecentBlockHash(anchor.Blockhash).
		SetFeePayer(payer).
		Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	return tx, anchor, nil
}

// EncodeUnsignedTransaction serializes tx with zeroed signature slots and
// returns the base-58 text of the wire bytes.
func EncodeUnsignedTransaction(tx *solana.Transaction) (string, error) {
	if len(tx.Signatures) == 0 {
		tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	}

	var buf bytes.Buffer
	if err := tx.MarshalWithEncoder(bin.NewBinEncoder(&buf)); err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return base58.Encode(buf.Bytes()), nil
}

// DecodeTransaction parses the base-58 text produced by EncodeUnsignedTransaction
func DecodeTransaction(encoded string) (*solana.Transaction, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	return tx, nil
}
