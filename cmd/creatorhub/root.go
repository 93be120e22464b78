package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"creatorhub/internal/config"
	"creatorhub/internal/contract"
	"creatorhub/internal/errs"
	"creatorhub/internal/history"
	"creatorhub/internal/marketplace"
	"creatorhub/internal/profile"
	"creatorhub/internal/rpc"
	"creatorhub/internal/token"
	"creatorhub/internal/wallet"
)

var rootCmd = &cobra.Command{
	Use:   "creatorhub",
	Short: "Creator token and marketplace contract gateway",
	Long: `creatorhub talks to the token and marketplace contracts over Soroban RPC.

Mutating commands simulate the call, build a fee-and-time-bounded envelope,
sign it with the configured local signer and submit it, polling until a
terminal outcome. Read commands simulate only and never submit anything.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(marketCmd)
}

// app bundles the wired components for one command invocation.
type app struct {
	cfg     *config.Config
	rpc     *rpc.Client
	client  *contract.Client
	tokens  *token.Operations
	market  *marketplace.Operations
	journal *history.PostgresJournal
}

// newApp loads configuration and wires the pipeline.
func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	configureLogging(cfg.LogLevel)

	prof := profile.Profile{
		RPCURL:            cfg.RPCServerURL,
		NetworkPassphrase: cfg.NetworkPassphrase,
		Contracts: profile.ContractIDs{
			Token:       cfg.TokenContractID,
			Marketplace: cfg.MarketplaceContractID,
		},
	}
	if err := prof.Validate(); err != nil {
		return nil, fmt.Errorf("invalid network profile: %w", err)
	}

	rpcClient := rpc.NewClient(cfg.RPCServerURL, rpc.Options{
		MaxRequestsPerSecond: cfg.RPCRateLimit,
	})

	a := &app{cfg: cfg, rpc: rpcClient}

	var journal contract.Journal
	if cfg.DatabaseURL != "" {
		pj, err := history.NewPostgresJournal(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open submission journal: %w", err)
		}
		a.journal = pj
		journal = pj
		slog.Info("Submission journal enabled")
	}

	a.client = contract.NewClient(prof, rpcClient, contract.Options{
		BaseFee: cfg.FeeStroops(),
		Timeout: cfg.DefaultTimeout,
		Journal: journal,
	})
	a.tokens = token.NewOperations(a.client)
	a.market = marketplace.NewOperations(a.client)

	slog.Info("Configuration loaded",
		"rpc_server", cfg.RPCServerURL,
		"network", cfg.NetworkPassphrase,
		"token_contract", cfg.TokenContractID,
		"marketplace_contract", cfg.MarketplaceContractID,
	)

	return a, nil
}

func (a *app) close() {
	if a.journal != nil {
		a.journal.Close()
	}
	if a.rpc != nil {
		_ = a.rpc.Close()
	}
}

// signer returns the configured local signer. Mutating commands require it.
func (a *app) signer() (*wallet.LocalSigner, error) {
	if a.cfg.SignerSeed == "" {
		return nil, fmt.Errorf("SIGNER_SEED is required for mutating commands")
	}
	return wallet.NewLocalSigner(a.cfg.SignerSeed)
}

// queryAccount is the simulation source for read-only calls: the explicit
// query account, falling back to the signer's address.
func (a *app) queryAccount() (string, error) {
	if a.cfg.QueryAccount != "" {
		return a.cfg.QueryAccount, nil
	}
	signer, err := a.signer()
	if err != nil {
		return "", fmt.Errorf("QUERY_ACCOUNT or SIGNER_SEED is required for read commands")
	}
	return signer.Address(), nil
}

// submit drives the back half of the pipeline: sign the unsigned envelope
// at the wallet boundary, then execute. A declined signature surfaces as
// SigningDeclined and nothing is submitted.
func (a *app) submit(ctx context.Context, unsigned *contract.Unsigned) (*contract.Outcome, error) {
	signer, err := a.signer()
	if err != nil {
		return nil, err
	}

	signed, err := signer.Sign(ctx, unsigned.Envelope, a.client.Profile().NetworkPassphrase)
	if err != nil {
		if errors.Is(err, wallet.ErrDeclined) {
			return nil, errs.Wrap(errs.SigningDeclined, err, "wallet declined to sign")
		}
		return nil, fmt.Errorf("signing failed: %w", err)
	}

	return a.client.Execute(ctx, signed)
}

// printOutcome renders a terminal outcome for the terminal.
func printOutcome(outcome *contract.Outcome) {
	if outcome == nil {
		return
	}
	switch outcome.Status {
	case contract.StatusSuccess:
		color.Green("✔ %s", outcome.Hash)
		if outcome.ReturnValue != nil {
			fmt.Printf("  return value: %v\n", outcome.ReturnValue)
		}
	case contract.StatusFailed:
		color.Red("✘ %s failed", outcome.Hash)
		if outcome.RawError != "" {
			fmt.Printf("  raw result: %s\n", outcome.RawError)
		}
	default:
		color.Yellow("⚠ %s %s", outcome.Hash, outcome.Status)
		if outcome.RawError != "" {
			fmt.Printf("  %s\n", outcome.RawError)
		}
	}
}

func configureLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}
