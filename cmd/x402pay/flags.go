package main

import (
	"github.com/urfave/cli/v2"

	"github.com/spikesonicguest/blip-x402-go/mechanisms/svm"
	svmsigners "github.com/spikesonicguest/blip-x402-go/signers/svm"
)

var (
	debugFlag = &cli.BoolFlag{
		Name:    "debug",
		Usage:   "Enable development logging",
		EnvVars: []string{"X402_DEBUG"},
	}
	facilitatorFlag = &cli.StringFlag{
		Name:    "facilitator",
		Usage:   "Facilitator registry key (payai, coinbase, x402org)",
		Value:   "payai",
		EnvVars: []string{"X402_FACILITATOR"},
	}
	facilitatorURLFlag = &cli.StringFlag{
		Name:    "facilitator-url",
		Usage:   "Override the facilitator base URL",
		EnvVars: []string{"X402_FACILITATOR_URL"},
	}
	networkFlag = &cli.StringFlag{
		Name:    "network",
		Usage:   "Network name",
		Value:   svm.DefaultNetwork,
		EnvVars: []string{"X402_NETWORK"},
	}
	payToFlag = &cli.StringFlag{
		Name:     "pay-to",
		Usage:    "Recipient address",
		Required: true,
	}
	amountFlag = &cli.StringFlag{
		Name:     "amount",
		Usage:    "Amount in SOL",
		Required: true,
	}
	resourceFlag = &cli.StringFlag{
		Name:  "resource",
		Usage: "Resource being paid for",
		Value: svm.DefaultResource,
	}
	descriptionFlag = &cli.StringFlag{
		Name:  "description",
		Usage: "Payment description",
		Value: svm.DefaultDescription,
	}
	labelFlag = &cli.StringFlag{
		Name:  "label",
		Usage: "Solana Pay label",
	}
	messageFlag = &cli.StringFlag{
		Name:  "message",
		Usage: "Solana Pay message",
	}
	memoFlag = &cli.StringFlag{
		Name:  "memo",
		Usage: "Solana Pay memo",
	}
	privateKeyFlag = &cli.StringFlag{
		Name:    "private-key",
		Usage:   "Base58 payer secret key",
		EnvVars: []string{"SOLANA_PRIVATE_KEY"},
	}
	rpcURLFlag = &cli.StringFlag{
		Name:    "rpc-url",
		Usage:   "Solana JSON-RPC endpoint (defaults to the network's public endpoint)",
		EnvVars: []string{"SOLANA_RPC_URL"},
	}
	confirmTimeoutFlag = &cli.DurationFlag{
		Name:  "confirm-timeout",
		Usage: "Longest to wait for a submitted transfer to confirm",
		Value: svmsigners.DefaultConfirmTimeout,
	}
	paymentRequiredFlag = &cli.StringFlag{
		Name:  "payment-required",
		Usage: "Path to a 402 response body to pay instead of --pay-to/--amount",
	}
)
