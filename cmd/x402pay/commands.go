package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	x402 "github.com/spikesonicguest/blip-x402-go"
	"github.com/spikesonicguest/blip-x402-go/encoding"
	x402http "github.com/spikesonicguest/blip-x402-go/http"
	"github.com/spikesonicguest/blip-x402-go/mechanisms/svm"
	"github.com/spikesonicguest/blip-x402-go/payment"
	"github.com/spikesonicguest/blip-x402-go/solanapay"
	svmsigners "github.com/spikesonicguest/blip-x402-go/signers/svm"
	"github.com/spikesonicguest/blip-x402-go/units"
)

var facilitatorsCommand = &cli.Command{
	Name:  "facilitators",
	Usage: "List registered facilitators",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "network", Usage: "Only show facilitators supporting this network"},
	},
	Action: func(ctx *cli.Context) error {
		if network := ctx.String("network"); network != "" {
			return printJSON(ctx, x402.SupportedFacilitators(network))
		}
		infos := make(map[string]x402.FacilitatorInfo)
		for _, key := range x402.FacilitatorKeys() {
			infos[key], _ = x402.Facilitator(key)
		}
		return printJSON(ctx, infos)
	},
}

var supportedCommand = &cli.Command{
	Name:  "supported",
	Usage: "Query a facilitator's supported payment kinds",
	Flags: []cli.Flag{facilitatorFlag, facilitatorURLFlag},
	Action: func(ctx *cli.Context) error {
		info, err := facilitatorInfo(ctx)
		if err != nil {
			return err
		}
		client := x402http.NewFacilitatorClient(x402http.WithLogger(loggerFrom(ctx)))
		return printJSON(ctx, client.SupportedMethodsOrDefault(ctx.Context, info))
	},
}

var requestCommand = &cli.Command{
	Name:  "request",
	Usage: "Print payment requirements and a Solana Pay URI for an amount",
	Flags: []cli.Flag{payToFlag, amountFlag, networkFlag, resourceFlag, descriptionFlag, labelFlag, messageFlag, memoFlag},
	Action: func(ctx *cli.Context) error {
		amount, err := units.ParseDecimal(ctx.String(amountFlag.Name))
		if err != nil {
			return err
		}
		payTo := ctx.String(payToFlag.Name)

		required := svm.BuildPaymentRequirements(payTo, amount, ctx.String(networkFlag.Name),
			ctx.String(resourceFlag.Name), ctx.String(descriptionFlag.Name))

		return printJSON(ctx, map[string]interface{}{
			"paymentRequired": required,
			"solanaPay": solanapay.Encode(solanapay.PaymentRequest{
				Recipient: payTo,
				Amount:    amount,
				Label:     ctx.String(labelFlag.Name),
				Message:   ctx.String(messageFlag.Name),
				Memo:      ctx.String(memoFlag.Name),
			}),
		})
	},
}

var decodeCommand = &cli.Command{
	Name:      "decode",
	Usage:     "Decode an X-PAYMENT header, X-PAYMENT-RESPONSE header or solana: URI",
	ArgsUsage: "<value>",
	Action: func(ctx *cli.Context) error {
		value := ctx.Args().First()
		if value == "" {
			return fmt.Errorf("missing value to decode")
		}
		if strings.HasPrefix(value, solanapay.Scheme+":") {
			req := solanapay.Decode(value)
			if req == nil {
				return fmt.Errorf("invalid Solana Pay URI")
			}
			return printJSON(ctx, map[string]string{
				"recipient": req.Recipient,
				"amount":    units.FormatSOL(req.Amount),
				"label":     req.Label,
				"message":   req.Message,
				"memo":      req.Memo,
				"reference": req.Reference,
			})
		}
		payload, err := encoding.ParsePaymentHeader(value)
		if err == nil {
			return printJSON(ctx, payload)
		}
		if settlement := encoding.DecodeSettlementHeader(value); settlement != nil {
			return printJSON(ctx, settlement)
		}
		return err
	},
}

var payCommand = &cli.Command{
	Name:  "pay",
	Usage: "Build, verify and settle a payment through a facilitator",
	Flags: []cli.Flag{
		facilitatorFlag, facilitatorURLFlag, privateKeyFlag, rpcURLFlag, networkFlag,
		&cli.StringFlag{Name: payToFlag.Name, Usage: payToFlag.Usage},
		&cli.StringFlag{Name: amountFlag.Name, Usage: amountFlag.Usage},
		resourceFlag, descriptionFlag, paymentRequiredFlag,
	},
	Action: func(ctx *cli.Context) error {
		processor, _, err := newProcessor(ctx)
		if err != nil {
			return err
		}

		var attempt *payment.Attempt
		if path := ctx.String(paymentRequiredFlag.Name); path != "" {
			body, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			attempt, err = processor.PayPaymentRequired(ctx.Context, body)
			if err != nil {
				return err
			}
		} else {
			amount, err := units.ParseDecimal(ctx.String(amountFlag.Name))
			if err != nil {
				return err
			}
			attempt, err = processor.Pay(ctx.Context, payment.Order{
				PayTo:       ctx.String(payToFlag.Name),
				Amount:      amount,
				Network:     ctx.String(networkFlag.Name),
				Resource:    ctx.String(resourceFlag.Name),
				Description: ctx.String(descriptionFlag.Name),
			})
			if err != nil {
				return err
			}
		}

		if err := printJSON(ctx, attemptSummary(attempt)); err != nil {
			return err
		}
		if !attempt.Succeeded() {
			return cli.Exit(attempt.FailureReason(), 2)
		}
		return nil
	},
}

var transferCommand = &cli.Command{
	Name:  "transfer",
	Usage: "Sign and submit a direct SOL transfer without a facilitator",
	Flags: []cli.Flag{payToFlag, amountFlag, privateKeyFlag, rpcURLFlag, networkFlag, confirmTimeoutFlag},
	Action: func(ctx *cli.Context) error {
		processor, signer, err := newProcessor(ctx)
		if err != nil {
			return err
		}
		amount, err := units.ParseDecimal(ctx.String(amountFlag.Name))
		if err != nil {
			return err
		}
		resp, err := processor.Transfer(ctx.Context, signer, ctx.String(payToFlag.Name), amount)
		if err != nil {
			return err
		}
		return printJSON(ctx, resp)
	},
}

var balanceCommand = &cli.Command{
	Name:  "balance",
	Usage: "Show the payer's SOL balance",
	Flags: []cli.Flag{privateKeyFlag, rpcURLFlag, networkFlag},
	Action: func(ctx *cli.Context) error {
		processor, signer, err := newProcessor(ctx)
		if err != nil {
			return err
		}
		balance, err := processor.PayerBalance(ctx.Context)
		if err != nil {
			return err
		}
		return printJSON(ctx, map[string]string{
			"address": signer.Address().String(),
			"balance": units.FormatSOL(balance),
		})
	},
}

func facilitatorInfo(ctx *cli.Context) (x402.FacilitatorInfo, error) {
	key := ctx.String(facilitatorFlag.Name)
	info, ok := x402.Facilitator(key)
	if !ok {
		return x402.FacilitatorInfo{}, fmt.Errorf("%w: %q", x402.ErrUnknownFacilitator, key)
	}
	if url := ctx.String(facilitatorURLFlag.Name); url != "" {
		info.URL = url
	}
	return info, nil
}

func newProcessor(ctx *cli.Context) (*payment.Processor, *svmsigners.ClientSigner, error) {
	logger := loggerFrom(ctx)

	key := ctx.String(privateKeyFlag.Name)
	if key == "" {
		return nil, nil, fmt.Errorf("SOLANA_PRIVATE_KEY or --%s is required", privateKeyFlag.Name)
	}
	signer, err := svmsigners.NewClientSignerFromPrivateKey(key)
	if err != nil {
		return nil, nil, err
	}

	rpcURL := ctx.String(rpcURLFlag.Name)
	if rpcURL == "" {
		config, err := svm.GetNetworkConfig(ctx.String(networkFlag.Name))
		if err != nil {
			return nil, nil, fmt.Errorf("no RPC endpoint for network: %w", err)
		}
		rpcURL = config.RPCURL
	}
	ledger := svmsigners.DialRPCLedger(rpcURL,
		svmsigners.WithLogger(logger),
		svmsigners.WithConfirmTimeout(ctx.Duration(confirmTimeoutFlag.Name)),
	)

	facilitatorKey := ctx.String(facilitatorFlag.Name)
	if facilitatorKey == "" {
		facilitatorKey = facilitatorFlag.Value
	}
	processor, err := payment.NewProcessor(ledger, signer.Address(), facilitatorKey,
		payment.WithLogger(logger),
		payment.WithFacilitatorURL(ctx.String(facilitatorURLFlag.Name)),
	)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("processor ready",
		zap.String("payer", signer.Address().String()),
		zap.String("facilitator", processor.Facilitator().Name),
		zap.String("rpc", rpcURL),
	)
	return processor, signer, nil
}

func attemptSummary(a *payment.Attempt) map[string]interface{} {
	summary := map[string]interface{}{
		"id":           a.ID.String(),
		"state":        a.State,
		"facilitator":  a.Facilitator.Name,
		"requirements": a.Requirements,
		"header":       a.Header,
	}
	if reason := a.FailureReason(); reason != "" {
		summary["reason"] = reason
	}
	if tx := a.TxHash(); tx != "" {
		summary["txHash"] = tx
	}
	return summary
}

func printJSON(ctx *cli.Context, v interface{}) error {
	enc := json.NewEncoder(ctx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
