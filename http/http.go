// Package http provides the HTTP client for x402 facilitator services.
package http

import (
	"fmt"
	"net/http"
	"strings"

	x402 "github.com/spikesonicguest/blip-x402-go"
)

const (
	verifyPath    = "/verify"
	settlePath    = "/settle"
	supportedPath = "/supported"

	// RequestTimeoutReason is reported when a facilitator call exceeds its deadline.
	RequestTimeoutReason = "Request timeout"
)

// FacilitatorURL resolves a registry key to its base URL.
func FacilitatorURL(key string) (string, error) {
	info, ok := x402.Facilitator(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", x402.ErrUnknownFacilitator, key)
	}
	return info.URL, nil
}

// NewFacilitatorClientWithHTTP creates a facilitator client that sends its
// requests through client.
func NewFacilitatorClientWithHTTP(client *http.Client, opts ...Option) *FacilitatorClient {
	return NewFacilitatorClient(append([]Option{WithHTTPClient(client)}, opts...)...)
}

func endpoint(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + path
}
