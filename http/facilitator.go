package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	x402 "github.com/spikesonicguest/blip-x402-go"
)

// Timeouts bounds each facilitator operation.
type Timeouts struct {
	Verify    time.Duration
	Settle    time.Duration
	Supported time.Duration
}

// DefaultTimeouts are the deadlines used unless overridden.
var DefaultTimeouts = Timeouts{
	Verify:    30 * time.Second,
	Settle:    30 * time.Second,
	Supported: 10 * time.Second,
}

// MaxResponseBytes caps how much of a facilitator reply is read.
const MaxResponseBytes = 1 << 20

var (
	errRequestTimeout = fmt.Errorf("%w: %s", x402.ErrFacilitatorTransport, RequestTimeoutReason)

	verifySchema = gojsonschema.NewStringLoader(`{
	  "type": "object",
	  "required": ["isValid"],
	  "properties": {
	    "isValid": {"type": "boolean"},
	    "invalidReason": {"type": ["string", "null"]}
	  }
	}`)

	settleSchema = gojsonschema.NewStringLoader(`{
	  "type": "object",
	  "required": ["success"],
	  "properties": {
	    "success": {"type": "boolean"},
	    "error": {"type": ["string", "null"]},
	    "txHash": {"type": ["string", "null"]},
	    "networkId": {"type": ["string", "null"]}
	  }
	}`)
)

// FacilitatorClient talks to x402 facilitators. It holds no per-call state and
// is safe for concurrent use.
type FacilitatorClient struct {
	client        *http.Client
	timeouts      Timeouts
	authorization string
	logger        *zap.Logger
}

// Option configures a FacilitatorClient
type Option func(*FacilitatorClient)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *FacilitatorClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeouts overrides the per-operation deadlines. Zero fields keep their defaults.
func WithTimeouts(t Timeouts) Option {
	return func(c *FacilitatorClient) {
		if t.Verify > 0 {
			c.timeouts.Verify = t.Verify
		}
		if t.Settle > 0 {
			c.timeouts.Settle = t.Settle
		}
		if t.Supported > 0 {
			c.timeouts.Supported = t.Supported
		}
	}
}

// WithAuthorization sets a static Authorization header value
func WithAuthorization(value string) Option {
	return func(c *FacilitatorClient) {
		c.authorization = value
	}
}

// WithLogger sets the logger for soft failures and fallbacks
func WithLogger(logger *zap.Logger) Option {
	return func(c *FacilitatorClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewFacilitatorClient creates a new facilitator client
func NewFacilitatorClient(opts ...Option) *FacilitatorClient {
	c := &FacilitatorClient{
		client:   http.DefaultClient,
		timeouts: DefaultTimeouts,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeouts returns the deadlines in effect
func (c *FacilitatorClient) Timeouts() Timeouts {
	return c.timeouts
}

// facilitatorRequest is the body of /verify and /settle
type facilitatorRequest struct {
	X402Version         int                      `json:"x402Version"`
	PaymentHeader       string                   `json:"paymentHeader"`
	PaymentRequirements x402.PaymentRequirements `json:"paymentRequirements"`
}

// Verify asks the facilitator at facilitatorURL whether paymentHeader satisfies
// requirements. Failures of any kind are reported as an invalid result.
func (c *FacilitatorClient) Verify(
	ctx context.Context,
	facilitatorURL string,
	paymentHeader string,
	requirements x402.PaymentRequirements,
) x402.VerifyResponse {
	var resp x402.VerifyResponse
	err := c.post(ctx, c.timeouts.Verify, "Verification", endpoint(facilitatorURL, verifyPath), paymentHeader, requirements, verifySchema, &resp)
	if err != nil {
		reason := failureReason(err)
		c.logger.Warn("payment verification failed",
			zap.String("facilitator", facilitatorURL),
			zap.String("reason", reason),
		)
		return x402.VerifyResponse{IsValid: false, InvalidReason: x402.StringPtr(reason)}
	}
	return resp
}

// Settle asks the facilitator at facilitatorURL to execute the payment.
// Failures of any kind are reported as an unsuccessful result with no
// transaction hash.
func (c *FacilitatorClient) Settle(
	ctx context.Context,
	facilitatorURL string,
	paymentHeader string,
	requirements x402.PaymentRequirements,
) x402.SettleResponse {
	var resp x402.SettleResponse
	err := c.post(ctx, c.timeouts.Settle, "Settlement", endpoint(facilitatorURL, settlePath), paymentHeader, requirements, settleSchema, &resp)
	if err != nil {
		reason := failureReason(err)
		c.logger.Warn("payment settlement failed",
			zap.String("facilitator", facilitatorURL),
			zap.String("reason", reason),
		)
		return x402.SettleResponse{Success: false, Error: x402.StringPtr(reason)}
	}
	return resp
}

// GetSupportedMethods lists the scheme/network pairs the facilitator accepts.
// Unlike Verify and Settle it returns an error on failure.
func (c *FacilitatorClient) GetSupportedMethods(ctx context.Context, facilitatorURL string) ([]x402.SupportedKind, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Supported)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint(facilitatorURL, supportedPath), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.setAuthorizationHeader(req)

	body, err := c.do(ctx, req, "Supported methods request")
	if err != nil {
		c.logger.Error("failed to get supported methods",
			zap.String("facilitator", facilitatorURL),
			zap.Error(err),
		)
		return nil, err
	}

	var supported x402.SupportedResponse
	if err := json.Unmarshal(body, &supported); err != nil {
		return nil, fmt.Errorf("%w: failed to decode supported response: %v", x402.ErrFacilitatorProtocol, err)
	}
	if supported.Kinds == nil {
		return []x402.SupportedKind{}, nil
	}
	return supported.Kinds, nil
}

// SupportedMethodsOrDefault queries info's facilitator and falls back to the
// kinds derived from its registered networks when the query fails.
func (c *FacilitatorClient) SupportedMethodsOrDefault(ctx context.Context, info x402.FacilitatorInfo) []x402.SupportedKind {
	kinds, err := c.GetSupportedMethods(ctx, info.URL)
	if err != nil {
		c.logger.Warn("using registry networks for facilitator",
			zap.String("facilitator", info.Name),
			zap.Error(err),
		)
		return x402.DefaultSupportedKinds(info)
	}
	return kinds
}

func (c *FacilitatorClient) post(
	ctx context.Context,
	timeout time.Duration,
	op string,
	url string,
	paymentHeader string,
	requirements x402.PaymentRequirements,
	schema gojsonschema.JSONLoader,
	out interface{},
) error {
	data, err := json.Marshal(facilitatorRequest{
		X402Version:         x402.ProtocolVersion,
		PaymentHeader:       paymentHeader,
		PaymentRequirements: requirements,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.setAuthorizationHeader(req)

	body, err := c.do(ctx, req, op)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", x402.ErrFacilitatorProtocol, err)
	}
	if !result.Valid() {
		return fmt.Errorf("%w: unexpected %s response: %v", x402.ErrFacilitatorProtocol, op, result.Errors()[0])
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", x402.ErrFacilitatorProtocol, err)
	}
	return nil
}

// do sends req and returns the body of a 2xx reply.
func (c *FacilitatorClient) do(ctx context.Context, req *http.Request, op string) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, transportError(ctx, err)
	}
	tooLarge := len(body) > MaxResponseBytes
	if tooLarge {
		body = body[:MaxResponseBytes]
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &x402.StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if tooLarge {
		return nil, fmt.Errorf("%w: %s response exceeds %d bytes", x402.ErrFacilitatorProtocol, op, MaxResponseBytes)
	}
	return body, nil
}

func (c *FacilitatorClient) setAuthorizationHeader(req *http.Request) {
	if c.authorization != "" {
		req.Header.Set("Authorization", c.authorization)
	}
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return errRequestTimeout
	}
	return fmt.Errorf("%w: %v", x402.ErrFacilitatorTransport, err)
}

// failureReason renders err as the reason carried in a soft-failed result.
func failureReason(err error) string {
	if errors.Is(err, errRequestTimeout) {
		return RequestTimeoutReason
	}
	var statusErr *x402.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	return err.Error()
}
