// Package solanapay encodes and decodes Solana Pay transfer request URIs.
package solanapay

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Scheme is the URI scheme of a transfer request.
const Scheme = "solana"

const schemePrefix = Scheme + ":"

// PaymentRequest is a transfer request. Empty strings and a zero amount are
// treated as absent.
type PaymentRequest struct {
	Recipient string
	Amount    decimal.Decimal
	Label     string
	Message   string
	Memo      string
	Reference string
}

// Encode renders req as solana:<recipient>?amount=..&label=..&message=..&memo=..&reference=..
// Absent fields are omitted and the parameter order is fixed.
func Encode(req PaymentRequest) string {
	var params []string
	add := func(key, value string) {
		if value != "" {
			params = append(params, key+"="+url.QueryEscape(value))
		}
	}

	if !req.Amount.IsZero() {
		add("amount", req.Amount.String())
	}
	add("label", req.Label)
	add("message", req.Message)
	add("memo", req.Memo)
	add("reference", req.Reference)

	uri := schemePrefix + req.Recipient
	if len(params) > 0 {
		uri += "?" + strings.Join(params, "&")
	}
	return uri
}

// Decode parses a transfer request URI. It returns nil when the scheme does
// not match, the query cannot be parsed or the recipient is empty.
// A missing or non-numeric amount decodes as zero.
func Decode(uri string) *PaymentRequest {
	if !strings.HasPrefix(uri, schemePrefix) {
		return nil
	}
	rest := strings.TrimPrefix(uri, schemePrefix)

	recipient, rawQuery, _ := strings.Cut(rest, "?")
	if recipient == "" {
		return nil
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil
	}

	amount, err := decimal.NewFromString(query.Get("amount"))
	if err != nil {
		amount = decimal.Zero
	}

	return &PaymentRequest{
		Recipient: recipient,
		Amount:    amount,
		Label:     query.Get("label"),
		Message:   query.Get("message"),
		Memo:      query.Get("memo"),
		Reference: query.Get("reference"),
	}
}

// QRData returns the payload to render into a QR code for req.
func QRData(req PaymentRequest) string {
	return Encode(req)
}
