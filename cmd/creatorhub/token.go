package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"creatorhub/internal/models"
)

var (
	tokenDecimals  uint32
	tokenBasePrice string
	tokenSlope     string
	tokenMaxPrice  string
	tokenMinPrice  string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Creator token operations",
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create <name> <symbol>",
	Short: "Create a new creator token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		signer, err := a.signer()
		if err != nil {
			return err
		}

		unsigned, err := a.tokens.CreateToken(ctx, signer.Address(), args[0], args[1], tokenDecimals, tokenBasePrice, tokenSlope)
		if err != nil {
			return err
		}

		outcome, err := a.submit(ctx, unsigned)
		printOutcome(outcome)
		return err
	},
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint <token-id> <amount>",
	Short: "Mint tokens as the creator",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		signer, err := a.signer()
		if err != nil {
			return err
		}

		unsigned, err := a.tokens.MintTokens(ctx, signer.Address(), args[0], args[1])
		if err != nil {
			return err
		}

		outcome, err := a.submit(ctx, unsigned)
		printOutcome(outcome)
		return err
	},
}

var tokenBuyCmd = &cobra.Command{
	Use:   "buy <token-id> <amount>",
	Short: "Buy tokens on the bonding curve",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		signer, err := a.signer()
		if err != nil {
			return err
		}

		unsigned, err := a.tokens.BuyTokens(ctx, signer.Address(), args[0], args[1], tokenMaxPrice)
		if err != nil {
			return err
		}

		outcome, err := a.submit(ctx, unsigned)
		printOutcome(outcome)
		return err
	},
}

var tokenSellCmd = &cobra.Command{
	Use:   "sell <token-id> <amount>",
	Short: "Sell tokens back to the bonding curve",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		signer, err := a.signer()
		if err != nil {
			return err
		}

		unsigned, err := a.tokens.SellTokens(ctx, signer.Address(), args[0], args[1], tokenMinPrice)
		if err != nil {
			return err
		}

		outcome, err := a.submit(ctx, unsigned)
		printOutcome(outcome)
		return err
	},
}

var tokenInfoCmd = &cobra.Command{
	Use:   "info <token-id>",
	Short: "Show token details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		caller, err := a.queryAccount()
		if err != nil {
			return err
		}

		tok, err := a.tokens.GetTokenDetails(ctx, caller, args[0])
		if err != nil {
			return err
		}

		renderTokens([]models.CreatorToken{*tok})
		return nil
	},
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all creator tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		caller, err := a.queryAccount()
		if err != nil {
			return err
		}

		tokens, err := a.tokens.GetAllTokens(ctx, caller)
		if err != nil {
			return err
		}
		if len(tokens) == 0 {
			fmt.Println("no tokens")
			return nil
		}

		renderTokens(tokens)
		return nil
	},
}

var tokenBalanceCmd = &cobra.Command{
	Use:   "balance <owner> <token-id>",
	Short: "Show an account's token balance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		caller, err := a.queryAccount()
		if err != nil {
			return err
		}

		balance, err := a.tokens.GetBalance(ctx, caller, args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Println(balance)
		return nil
	},
}

func renderTokens(tokens []models.CreatorToken) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Name", "Symbol", "Creator", "Supply", "Decimals"})
	for _, tok := range tokens {
		t.AppendRow(table.Row{
			tok.ID,
			tok.Name,
			tok.Symbol,
			tok.Creator,
			tok.Supply,
			strconv.FormatUint(uint64(tok.Decimals), 10),
		})
	}
	t.Render()
}

func init() {
	tokenCreateCmd.Flags().Uint32Var(&tokenDecimals, "decimals", 7, "token decimals")
	tokenCreateCmd.Flags().StringVar(&tokenBasePrice, "base-price", "", "bonding curve base price, decimal units")
	tokenCreateCmd.Flags().StringVar(&tokenSlope, "slope", "", "bonding curve slope, decimal units")
	_ = tokenCreateCmd.MarkFlagRequired("base-price")
	_ = tokenCreateCmd.MarkFlagRequired("slope")

	tokenBuyCmd.Flags().StringVar(&tokenMaxPrice, "max-price", "", "maximum total price to pay, decimal units")
	_ = tokenBuyCmd.MarkFlagRequired("max-price")

	tokenSellCmd.Flags().StringVar(&tokenMinPrice, "min-price", "", "minimum total price to accept, decimal units")
	_ = tokenSellCmd.MarkFlagRequired("min-price")

	tokenCmd.AddCommand(tokenCreateCmd)
	tokenCmd.AddCommand(tokenMintCmd)
	tokenCmd.AddCommand(tokenBuyCmd)
	tokenCmd.AddCommand(tokenSellCmd)
	tokenCmd.AddCommand(tokenInfoCmd)
	tokenCmd.AddCommand(tokenListCmd)
	tokenCmd.AddCommand(tokenBalanceCmd)
}
