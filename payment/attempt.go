// Package payment drives a single x402 payment from requirements to settlement.
package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	x402 "github.com/spikesonicguest/blip-x402-go"
)

// State is the lifecycle position of an Attempt.
type State string

const (
	StateIdle               State = "idle"
	StateVerifying          State = "verifying"
	StateVerified           State = "verified"
	StateVerificationFailed State = "verification_failed"
	StateSettling           State = "settling"
	StateSettled            State = "settled"
	StateSettlementFailed   State = "settlement_failed"
)

var transitions = map[State][]State{
	StateIdle:      {StateVerifying},
	StateVerifying: {StateVerified, StateVerificationFailed},
	StateVerified:  {StateSettling},
	StateSettling:  {StateSettled, StateSettlementFailed},
}

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// Attempt records one payment through verification and settlement.
// Attempts share nothing with each other.
type Attempt struct {
	ID           uuid.UUID
	State        State
	Facilitator  x402.FacilitatorInfo
	Requirements x402.PaymentRequirements
	Payload      x402.PaymentPayload
	Header       string
	Verification *x402.VerifyResponse
	Settlement   *x402.SettleResponse
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func newAttempt(now time.Time, facilitator x402.FacilitatorInfo, req x402.PaymentRequirements) *Attempt {
	return &Attempt{
		ID:           uuid.New(),
		State:        StateIdle,
		Facilitator:  facilitator,
		Requirements: req,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (a *Attempt) transition(to State, now time.Time) error {
	for _, allowed := range transitions[a.State] {
		if allowed == to {
			a.State = to
			a.UpdatedAt = now
			return nil
		}
	}
	return fmt.Errorf("invalid payment state transition %s -> %s", a.State, to)
}

// Succeeded reports whether the payment settled.
func (a *Attempt) Succeeded() bool {
	return a.State == StateSettled
}

// FailureReason returns the facilitator's reason for a failed attempt, or a
// generic message when it gave none. It is empty for attempts that have not failed.
func (a *Attempt) FailureReason() string {
	switch a.State {
	case StateVerificationFailed:
		if a.Verification != nil && a.Verification.Reason() != "" {
			return a.Verification.Reason()
		}
		return "Payment verification failed"
	case StateSettlementFailed:
		if a.Settlement != nil && a.Settlement.ErrorReason() != "" {
			return a.Settlement.ErrorReason()
		}
		return "Payment settlement failed"
	}
	return ""
}

// TxHash returns the settlement transaction hash, if any.
func (a *Attempt) TxHash() string {
	if a.Settlement == nil {
		return ""
	}
	return a.Settlement.Transaction()
}
