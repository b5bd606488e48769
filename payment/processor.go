package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	x402 "github.com/spikesonicguest/blip-x402-go"
	"github.com/spikesonicguest/blip-x402-go/encoding"
	x402http "github.com/spikesonicguest/blip-x402-go/http"
	"github.com/spikesonicguest/blip-x402-go/mechanisms/svm"
	"github.com/spikesonicguest/blip-x402-go/mechanisms/svm/exact/client"
	"github.com/spikesonicguest/blip-x402-go/types"
	"github.com/spikesonicguest/blip-x402-go/units"
	"github.com/spikesonicguest/blip-x402-go/validation"
)

// Facilitator verifies and settles payments. *http.FacilitatorClient implements it.
type Facilitator interface {
	Verify(ctx context.Context, facilitatorURL, paymentHeader string, requirements x402.PaymentRequirements) x402.VerifyResponse
	Settle(ctx context.Context, facilitatorURL, paymentHeader string, requirements x402.PaymentRequirements) x402.SettleResponse
}

// Order is a request to pay Amount SOL to PayTo.
type Order struct {
	PayTo       string
	Amount      decimal.Decimal
	Network     string
	Resource    string
	Description string
}

// Processor runs payments for one payer against one facilitator.
type Processor struct {
	payer       solana.PublicKey
	scheme      *client.ExactSvmScheme
	facilitator Facilitator
	info        x402.FacilitatorInfo
	logger      *zap.Logger
	now         func() time.Time

	// Optional ledger capabilities, resolved once at construction.
	balances  svm.BalanceReader
	submitter svm.Ledger
}

// Option configures a Processor
type Option func(*Processor)

// WithFacilitator replaces the default HTTP facilitator client
func WithFacilitator(f Facilitator) Option {
	return func(p *Processor) {
		if f != nil {
			p.facilitator = f
		}
	}
}

// WithFacilitatorURL overrides the registry URL of the facilitator
func WithFacilitatorURL(url string) Option {
	return func(p *Processor) {
		if url != "" {
			p.info.URL = url
		}
	}
}

// WithLogger sets the processor's logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock sets the time source for attempt timestamps
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProcessor creates a processor paying from payer through the registered
// facilitator facilitatorKey. ledger must supply recent blockhashes; if it
// also reads balances or submits transactions those capabilities are enabled.
func NewProcessor(ledger svm.AnchorReader, payer solana.PublicKey, facilitatorKey string, opts ...Option) (*Processor, error) {
	info, ok := x402.Facilitator(facilitatorKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", x402.ErrUnknownFacilitator, facilitatorKey)
	}

	p := &Processor{
		payer:  payer,
		info:   info,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.scheme = client.NewExactSvmScheme(ledger, client.WithLogger(p.logger))
	if p.facilitator == nil {
		p.facilitator = x402http.NewFacilitatorClient(x402http.WithLogger(p.logger))
	}
	if b, ok := ledger.(svm.BalanceReader); ok {
		p.balances = b
	}
	if l, ok := ledger.(svm.Ledger); ok {
		p.submitter = l
	}
	return p, nil
}

// Facilitator returns the registry entry the processor settles through
func (p *Processor) Facilitator() x402.FacilitatorInfo {
	return p.info
}

// Pay builds requirements for order and runs them through verification and
// settlement. The amount must be a positive whole number of lamports.
func (p *Processor) Pay(ctx context.Context, order Order) (*Attempt, error) {
	if !validation.IsValidAddress(order.PayTo) {
		return nil, fmt.Errorf("%w: payTo %q", x402.ErrInvalidAddress, order.PayTo)
	}
	lamports, err := units.ToSmallestUnit(order.Amount, svm.Decimals)
	if err != nil {
		return nil, err
	}
	if lamports.Sign() == 0 {
		return nil, fmt.Errorf("%w: %s SOL is less than one lamport", x402.ErrInvalidAmount, order.Amount)
	}

	resp := svm.BuildPaymentRequirements(order.PayTo, order.Amount, order.Network, order.Resource, order.Description)
	req, ok := resp.FirstAccepted()
	if !ok {
		return nil, x402.ErrNoRequirements
	}
	return p.PayRequirements(ctx, req)
}

// PayPaymentRequired pays the first exact Solana entry offered by a 402 response body.
func (p *Processor) PayPaymentRequired(ctx context.Context, body []byte) (*Attempt, error) {
	partial, err := types.ToPaymentRequiredPartial(body)
	if err != nil {
		return nil, fmt.Errorf("invalid payment required response: %w", err)
	}
	if len(partial.Accepts) == 0 {
		return nil, x402.ErrNoRequirements
	}

	for i, raw := range partial.Accepts {
		info, err := types.ExtractRequirementsInfo(raw)
		if err != nil {
			p.logger.Debug("skipping unreadable requirements", zap.Int("index", i), zap.Error(err))
			continue
		}
		if info.Scheme != x402.SchemeExact || x402.ChainFamily(info.Network) != x402.FamilySolana {
			continue
		}
		if err := validation.ValidateRequirementsJSON(raw); err != nil {
			p.logger.Debug("skipping invalid requirements", zap.Int("index", i), zap.Error(err))
			continue
		}
		req, err := types.DecodeRequirements(raw)
		if err != nil {
			continue
		}
		return p.PayRequirements(ctx, req)
	}
	return nil, fmt.Errorf("%w: no exact solana entry among %d", x402.ErrNoRequirements, len(partial.Accepts))
}

// PayRequirements constructs the payment for req and submits it to the
// facilitator. Invalid requirements and construction errors are returned;
// facilitator failures are recorded in the returned Attempt.
func (p *Processor) PayRequirements(ctx context.Context, req x402.PaymentRequirements) (*Attempt, error) {
	if err := validation.ValidatePaymentRequirements(req); err != nil {
		return nil, err
	}
	if !p.info.SupportsNetwork(req.Network) {
		p.logger.Warn("facilitator does not list network",
			zap.String("facilitator", p.info.Name),
			zap.String("network", req.Network),
		)
	}

	payload, err := p.scheme.CreatePaymentPayload(ctx, p.payer, req)
	if err != nil {
		return nil, err
	}
	if err := p.checkPayload(payload, req); err != nil {
		return nil, err
	}
	header, err := encoding.EncodePaymentHeader(payload)
	if err != nil {
		return nil, err
	}

	attempt := newAttempt(p.now(), p.info, req)
	attempt.Payload = payload
	attempt.Header = header
	logger := p.logger.With(zap.String("attempt", attempt.ID.String()))

	if err := attempt.transition(StateVerifying, p.now()); err != nil {
		return nil, err
	}
	verification := p.facilitator.Verify(ctx, p.info.URL, header, req)
	attempt.Verification = &verification
	if !verification.IsValid {
		if err := attempt.transition(StateVerificationFailed, p.now()); err != nil {
			return nil, err
		}
		logger.Warn("payment verification failed", zap.String("reason", attempt.FailureReason()))
		return attempt, nil
	}
	if err := attempt.transition(StateVerified, p.now()); err != nil {
		return nil, err
	}

	if err := attempt.transition(StateSettling, p.now()); err != nil {
		return nil, err
	}
	settlement := p.facilitator.Settle(ctx, p.info.URL, header, req)
	attempt.Settlement = &settlement
	if !settlement.Success {
		if err := attempt.transition(StateSettlementFailed, p.now()); err != nil {
			return nil, err
		}
		logger.Warn("payment settlement failed", zap.String("reason", attempt.FailureReason()))
		return attempt, nil
	}
	if err := attempt.transition(StateSettled, p.now()); err != nil {
		return nil, err
	}

	logger.Info("payment settled",
		zap.String("txHash", attempt.TxHash()),
		zap.String("network", req.Network),
		zap.String("amount", req.MaxAmountRequired),
	)
	return attempt, nil
}

// checkPayload confirms that payload targets req and that its transaction
// decodes to a transfer paid for by the processor's payer.
func (p *Processor) checkPayload(payload x402.PaymentPayload, req x402.PaymentRequirements) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	reqBytes, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal requirements: %w", err)
	}
	ok, err := types.MatchPayloadToRequirements(payload.X402Version, payloadBytes, reqBytes)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("payload %s/%s does not match requirements %s/%s",
			payload.Scheme, payload.Network, req.Scheme, req.Network)
	}

	svmPayload, err := svm.PayloadFromMap(payload.Payload)
	if err != nil {
		return err
	}
	if svmPayload.Amount != req.MaxAmountRequired {
		return fmt.Errorf("payload amount %s does not match %s", svmPayload.Amount, req.MaxAmountRequired)
	}
	tx, err := client.DecodeTransaction(svmPayload.Transaction)
	if err != nil {
		return err
	}
	if len(tx.Message.AccountKeys) == 0 || !tx.Message.AccountKeys[0].Equals(p.payer) {
		return fmt.Errorf("payload transaction is not paid for by %s", p.payer)
	}
	return nil
}

// PayerBalance returns the payer's balance in SOL. It fails with
// x402.ErrUnsupported when the ledger cannot read balances.
func (p *Processor) PayerBalance(ctx context.Context) (decimal.Decimal, error) {
	if p.balances == nil {
		return decimal.Zero, x402.ErrUnsupported
	}
	lamports, err := p.balances.GetBalance(ctx, p.payer)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", x402.ErrLedgerUnavailable, err)
	}
	return units.LamportsToSol(lamports), nil
}

// Transfer signs and submits a direct SOL transfer to recipient, bypassing the
// facilitator, and waits for confirmation. It fails with x402.ErrUnsupported
// when the ledger cannot submit transactions.
func (p *Processor) Transfer(ctx context.Context, signer svm.TransactionSigner, recipient string, amount decimal.Decimal) (x402.PaymentResponse, error) {
	if p.submitter == nil {
		return x402.PaymentResponse{}, x402.ErrUnsupported
	}
	to, err := solana.PublicKeyFromBase58(recipient)
	if err != nil {
		return x402.PaymentResponse{}, fmt.Errorf("%w: %q", x402.ErrInvalidAddress, recipient)
	}
	if !amount.IsPositive() {
		return x402.PaymentResponse{}, fmt.Errorf("%w: %s", x402.ErrInvalidAmount, amount)
	}
	lamports, err := units.SolToLamports(amount)
	if err != nil {
		return x402.PaymentResponse{}, err
	}

	tx, anchor, err := p.scheme.BuildTransfer(ctx, signer.Address(), to, lamports)
	if err != nil {
		return x402.PaymentResponse{}, err
	}
	if err := signer.SignTransaction(ctx, tx); err != nil {
		return x402.PaymentResponse{}, fmt.Errorf("failed to sign transfer: %w", err)
	}

	sig, err := p.submitter.SubmitSigned(ctx, tx)
	if err != nil {
		return x402.PaymentResponse{}, fmt.Errorf("%w: %v", x402.ErrLedgerUnavailable, err)
	}
	confirmed, err := p.submitter.Confirm(ctx, sig, *anchor)
	if err != nil {
		return x402.PaymentResponse{}, fmt.Errorf("transfer %s not confirmed: %w", sig, err)
	}
	if !confirmed {
		return x402.PaymentResponse{}, fmt.Errorf("transfer %s not confirmed", sig)
	}

	return x402.PaymentResponse{
		Signature: sig.String(),
		Timestamp: p.now().UnixMilli(),
		Amount:    amount.String(),
		Recipient: to.String(),
	}, nil
}
