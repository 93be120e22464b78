package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"creatorhub/internal/marketplace"
	"creatorhub/internal/models"
)

var (
	marketLimit  uint32
	marketOffset uint32
	marketSeller string
	marketToken  string
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Marketplace operations",
}

var marketListCmd = &cobra.Command{
	Use:   "list <token-id> <amount> <price>",
	Short: "List tokens for sale",
	Args:  cobra.ExactArgs(3),
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

		unsigned, err := a.market.ListToken(ctx, signer.Address(), args[0], args[1], args[2])
		if err != nil {
			return err
		}

		outcome, err := a.submit(ctx, unsigned)
		printOutcome(outcome)
		return err
	},
}

var marketBuyCmd = &cobra.Command{
	Use:   "buy <listing-id> <amount>",
	Short: "Buy from a listing",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		listingID, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("listing ID must be a number: %w", err)
		}

		signer, err := a.signer()
		if err != nil {
			return err
		}

		unsigned, err := a.market.BuyToken(ctx, signer.Address(), listingID, args[1])
		if err != nil {
			return err
		}

		outcome, err := a.submit(ctx, unsigned)
		printOutcome(outcome)
		return err
	},
}

var marketCancelCmd = &cobra.Command{
	Use:   "cancel <listing-id>",
	Short: "Cancel your listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		listingID, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("listing ID must be a number: %w", err)
		}

		signer, err := a.signer()
		if err != nil {
			return err
		}

		unsigned, err := a.market.CancelListing(ctx, signer.Address(), listingID)
		if err != nil {
			return err
		}

		outcome, err := a.submit(ctx, unsigned)
		printOutcome(outcome)
		return err
	},
}

var marketRepriceCmd = &cobra.Command{
	Use:   "reprice <listing-id> <new-price>",
	Short: "Update the price of your listing",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		listingID, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("listing ID must be a number: %w", err)
		}

		signer, err := a.signer()
		if err != nil {
			return err
		}

		unsigned, err := a.market.UpdateListingPrice(ctx, signer.Address(), listingID, args[1])
		if err != nil {
			return err
		}

		outcome, err := a.submit(ctx, unsigned)
		printOutcome(outcome)
		return err
	},
}

var marketListingsCmd = &cobra.Command{
	Use:   "listings",
	Short: "Browse marketplace listings",
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

		query := marketplace.Query{Limit: marketLimit, Offset: marketOffset}

		var listings []models.Listing
		switch {
		case marketSeller != "":
			listings, err = a.market.GetListingsBySeller(ctx, caller, marketSeller, query)
		case marketToken != "":
			listings, err = a.market.GetListingsByToken(ctx, caller, marketToken, query)
		default:
			listings, err = a.market.GetAllListings(ctx, caller, query)
		}
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			fmt.Println("no listings")
			return nil
		}

		renderListings(listings)
		return nil
	},
}

var marketShowCmd = &cobra.Command{
	Use:   "show <listing-id>",
	Short: "Show a single listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		listingID, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("listing ID must be a number: %w", err)
		}

		caller, err := a.queryAccount()
		if err != nil {
			return err
		}

		listing, err := a.market.GetListing(ctx, caller, listingID)
		if err != nil {
			return err
		}

		renderListings([]models.Listing{*listing})
		return nil
	},
}

func renderListings(listings []models.Listing) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Token", "Seller", "Amount", "Price", "Active", "Created"})
	for _, l := range listings {
		t.AppendRow(table.Row{
			l.ID,
			l.TokenID,
			l.Seller,
			l.Amount,
			l.Price,
			l.IsActive,
			l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	t.Render()
}

func init() {
	marketListingsCmd.Flags().Uint32Var(&marketLimit, "limit", marketplace.DefaultLimit, "page size")
	marketListingsCmd.Flags().Uint32Var(&marketOffset, "offset", 0, "page offset")
	marketListingsCmd.Flags().StringVar(&marketSeller, "seller", "", "filter by seller address")
	marketListingsCmd.Flags().StringVar(&marketToken, "token", "", "filter by token ID")

	marketCmd.AddCommand(marketListCmd)
	marketCmd.AddCommand(marketBuyCmd)
	marketCmd.AddCommand(marketCancelCmd)
	marketCmd.AddCommand(marketRepriceCmd)
	marketCmd.AddCommand(marketListingsCmd)
	marketCmd.AddCommand(marketShowCmd)
}
