// Package marketplace wraps the marketplace contract's entry points,
// mirroring the token operation set: mutating methods return unsigned
// envelopes for external signing, read queries decode fresh contract state
// on every call.
package marketplace

import (
	"context"
	"math/big"
	"time"

	"github.com/stellar/go/xdr"

	"creatorhub/internal/contract"
	"creatorhub/internal/errs"
	"creatorhub/internal/models"
	"creatorhub/internal/scval"
)

// Pagination defaults for collection reads.
const (
	DefaultLimit  = 50
	DefaultOffset = 0
)

// Query carries limit/offset pagination for collection reads. Zero values
// fall back to the defaults.
type Query struct {
	Limit  uint32
	Offset uint32
}

func (q Query) normalize() Query {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	return q
}

// Operations exposes one method per marketplace contract entry point.
type Operations struct {
	client     *contract.Client
	contractID string
}

// NewOperations binds the operation set to the profile's marketplace
// contract.
func NewOperations(client *contract.Client) *Operations {
	return &Operations{
		client:     client,
		contractID: client.Profile().Contracts.Marketplace,
	}
}

// ListToken prepares list_token(seller, token_id, amount, price). Amount is
// a whole-unit integer; price is a decimal amount string carried as i128
// stroops on the wire.
func (o *Operations) ListToken(ctx context.Context, seller, tokenID, amount, price string) (*contract.Unsigned, error) {
	args, err := contract.EncodeArgs(
		contract.Arg{Value: seller, Kind: scval.KindAddress},
		contract.Arg{Value: tokenID, Kind: scval.KindString},
		contract.Arg{Value: amount, Kind: scval.KindI128},
		contract.Arg{Value: price, Kind: scval.KindAmount},
	)
	if err != nil {
		return nil, err
	}
	return o.prepare(ctx, seller, "list_token", args)
}

// BuyToken prepares buy_token(buyer, listing_id, amount).
func (o *Operations) BuyToken(ctx context.Context, buyer string, listingID uint64, amount string) (*contract.Unsigned, error) {
	args, err := contract.EncodeArgs(
		contract.Arg{Value: buyer, Kind: scval.KindAddress},
		contract.Arg{Value: listingID, Kind: scval.KindU64},
		contract.Arg{Value: amount, Kind: scval.KindI128},
	)
	if err != nil {
		return nil, err
	}
	return o.prepare(ctx, buyer, "buy_token", args)
}

// CancelListing prepares cancel_listing(seller, listing_id).
func (o *Operations) CancelListing(ctx context.Context, seller string, listingID uint64) (*contract.Unsigned, error) {
	args, err := contract.EncodeArgs(
		contract.Arg{Value: seller, Kind: scval.KindAddress},
		contract.Arg{Value: listingID, Kind: scval.KindU64},
	)
	if err != nil {
		return nil, err
	}
	return o.prepare(ctx, seller, "cancel_listing", args)
}

// UpdateListingPrice prepares update_listing_price(seller, listing_id,
// new_price).
func (o *Operations) UpdateListingPrice(ctx context.Context, seller string, listingID uint64, newPrice string) (*contract.Unsigned, error) {
	args, err := contract.EncodeArgs(
		contract.Arg{Value: seller, Kind: scval.KindAddress},
		contract.Arg{Value: listingID, Kind: scval.KindU64},
		contract.Arg{Value: newPrice, Kind: scval.KindAmount},
	)
	if err != nil {
		return nil, err
	}
	return o.prepare(ctx, seller, "update_listing_price", args)
}

// GetListing reads get_listing(listing_id).
func (o *Operations) GetListing(ctx context.Context, caller string, listingID uint64) (*models.Listing, error) {
	args, err := contract.EncodeArgs(
		contract.Arg{Value: listingID, Kind: scval.KindU64},
	)
	if err != nil {
		return nil, err
	}

	result, err := o.client.CallMethod(ctx, caller, contract.Call{
		ContractID: o.contractID,
		Method:     "get_listing",
		Args:       args,
	})
	if err != nil {
		return nil, err
	}
	return listingFromResult(result)
}

// GetAllListings reads get_all_listings(limit, offset).
func (o *Operations) GetAllListings(ctx context.Context, caller string, q Query) ([]models.Listing, error) {
	q = q.normalize()
	args, err := contract.EncodeArgs(
		contract.Arg{Value: q.Limit, Kind: scval.KindU32},
		contract.Arg{Value: q.Offset, Kind: scval.KindU32},
	)
	if err != nil {
		return nil, err
	}
	return o.readListings(ctx, caller, "get_all_listings", args)
}

// GetListingsBySeller reads get_listings_by_seller(seller, limit, offset).
func (o *Operations) GetListingsBySeller(ctx context.Context, caller, seller string, q Query) ([]models.Listing, error) {
	q = q.normalize()
	args, err := contract.EncodeArgs(
		contract.Arg{Value: seller, Kind: scval.KindAddress},
		contract.Arg{Value: q.Limit, Kind: scval.KindU32},
		contract.Arg{Value: q.Offset, Kind: scval.KindU32},
	)
	if err != nil {
		return nil, err
	}
	return o.readListings(ctx, caller, "get_listings_by_seller", args)
}

// GetListingsByToken reads get_listings_by_token(token_id, limit, offset).
func (o *Operations) GetListingsByToken(ctx context.Context, caller, tokenID string, q Query) ([]models.Listing, error) {
	q = q.normalize()
	args, err := contract.EncodeArgs(
		contract.Arg{Value: tokenID, Kind: scval.KindString},
		contract.Arg{Value: q.Limit, Kind: scval.KindU32},
		contract.Arg{Value: q.Offset, Kind: scval.KindU32},
	)
	if err != nil {
		return nil, err
	}
	return o.readListings(ctx, caller, "get_listings_by_token", args)
}

// readListings runs a collection query and maps each element. A
// non-sequence result is an InvalidResponseFormat error, never a silent
// empty list.
func (o *Operations) readListings(ctx context.Context, caller, method string, args []xdr.ScVal) ([]models.Listing, error) {
	result, err := o.client.CallMethod(ctx, caller, contract.Call{
		ContractID: o.contractID,
		Method:     method,
		Args:       args,
	})
	if err != nil {
		return nil, err
	}

	items, ok := result.([]any)
	if !ok {
		return nil, errs.New(errs.InvalidResponseFormat, "%s returned %T, expected a sequence", method, result)
	}

	listings := make([]models.Listing, 0, len(items))
	for _, item := range items {
		listing, err := listingFromResult(item)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *listing)
	}
	return listings, nil
}

func (o *Operations) prepare(ctx context.Context, caller, method string, args []xdr.ScVal) (*contract.Unsigned, error) {
	call := contract.Call{ContractID: o.contractID, Method: method, Args: args}
	sim, err := o.client.Simulate(ctx, caller, call)
	if err != nil {
		return nil, err
	}
	envelope, err := o.client.Prepare(sim, contract.PrepareOptions{})
	if err != nil {
		return nil, err
	}
	return &contract.Unsigned{Envelope: envelope, Simulation: sim}, nil
}

// listingFromResult maps a decoded contract struct onto Listing. Amounts
// arrive as raw i128 integers; the price is rendered back to its canonical
// decimal form.
func listingFromResult(result any) (*models.Listing, error) {
	fields, ok := result.(map[string]any)
	if !ok {
		return nil, errs.New(errs.InvalidResponseFormat, "listing entry is %T, expected a map", result)
	}

	listing := &models.Listing{}
	switch v := fields["id"].(type) {
	case uint64:
		listing.ID = v
	case uint32:
		listing.ID = uint64(v)
	default:
		return nil, errs.New(errs.InvalidResponseFormat, "listing id is %T, expected an integer", fields["id"])
	}
	if v, ok := fields["token_id"].(string); ok {
		listing.TokenID = v
	}
	if v, ok := fields["seller"].(string); ok {
		listing.Seller = v
	}
	if v, ok := fields["is_active"].(bool); ok {
		listing.IsActive = v
	}
	if v, ok := fields["amount"].(*big.Int); ok {
		listing.Amount = v.String()
	}
	if v, ok := fields["price"].(*big.Int); ok {
		listing.Price = scval.FormatAmount(v)
	}
	if v, ok := fields["created_at"].(uint64); ok {
		listing.CreatedAt = time.Unix(int64(v), 0).UTC()
	}
	return listing, nil
}
