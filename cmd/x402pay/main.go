// Command x402pay inspects x402 facilitators and pays for resources with SOL.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	x402 "github.com/spikesonicguest/blip-x402-go"
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "x402pay",
		Usage:   "x402 payment client for Solana",
		Version: x402.Version,
		Flags: []cli.Flag{
			debugFlag,
		},
		Before: func(ctx *cli.Context) error {
			logger, err := newLogger(ctx.Bool(debugFlag.Name))
			if err != nil {
				return err
			}
			ctx.App.Metadata = map[string]interface{}{"logger": logger}
			return nil
		},
		After: func(ctx *cli.Context) error {
			_ = loggerFrom(ctx).Sync()
			return nil
		},
		Commands: []*cli.Command{
			facilitatorsCommand,
			supportedCommand,
			requestCommand,
			decodeCommand,
			payCommand,
			transferCommand,
			balanceCommand,
		},
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loggerFrom(ctx *cli.Context) *zap.Logger {
	if logger, ok := ctx.App.Metadata["logger"].(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}
