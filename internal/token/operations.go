// Package token wraps the token contract's entry points. Mutating methods
// simulate and prepare only, returning the unsigned envelope for external
// signing; the caller drives the wallet boundary and then Execute. Read
// queries go through CallMethod and never build an envelope.
package token

import (
	"context"
	"math/big"

	"github.com/stellar/go/xdr"

	"creatorhub/internal/contract"
	"creatorhub/internal/errs"
	"creatorhub/internal/models"
	"creatorhub/internal/scval"
)

// Operations exposes one method per token contract entry point.
type Operations struct {
	client     *contract.Client
	contractID string
}

// NewOperations binds the operation set to the profile's token contract.
func NewOperations(client *contract.Client) *Operations {
	return &Operations{
		client:     client,
		contractID: client.Profile().Contracts.Token,
	}
}

// CreateToken prepares create_token(creator, name, symbol, decimals,
// base_price, slope). Prices are decimal amount strings.
func (o *Operations) CreateToken(ctx context.Context, creator, name, symbol string, decimals uint32, basePrice, slope string) (*contract.Unsigned, error) {
	args, err := contract.EncodeArgs(
		contract.Arg{Value: creator, Kind: scval.KindAddress},
		contract.Arg{Value: name, Kind: scval.KindString},
		contract.Arg{Value: symbol, Kind: scval.KindString},
		contract.Arg{Value: decimals, Kind: scval.KindU32},
		contract.Arg{Value: basePrice, Kind: scval.KindAmount},
		contract.Arg{Value: slope, Kind: scval.KindAmount},
	)
	if err != nil {
		return nil, err
	}
	return o.prepare(ctx, creator, "create_token", args)
}

// MintTokens prepares mint_tokens(creator, token_id, amount). Amount is a
// whole-unit integer.
func (o *Operations) MintTokens(ctx context.Context, creator, tokenID, amount string) (*contract.Unsigned, error) {
	args, err := contract.EncodeArgs(
		contract.Arg{Value: creator, Kind: scval.KindAddress},
		contract.Arg{Value: tokenID, Kind: scval.KindString},
		contract.Arg{Value: amount, Kind: scval.KindI128},
	)
	if err != nil {
		return nil, err
	}
	return o.prepare(ctx, creator, "mint_tokens", args)
}

// BuyTokens prepares buy_tokens(caller, token_id, amount, max_price).
// Amount is a whole-unit integer; max_price is a decimal amount string
// scaled to i128 stroops on the wire.
func (o *Operations) BuyTokens(ctx context.Context, buyer, tokenID, amount, maxPrice string) (*contract.Unsigned, error) {
	args, err := contract.EncodeArgs(
		contract.Arg{Value: buyer, Kind: scval.KindAddress},
		contract.Arg{Value: tokenID, Kind: scval.KindString},
		contract.Arg{Value: amount, Kind: scval.KindI128},
		contract.Arg{Value: maxPrice, Kind: scval.KindAmount},
	)
	if err != nil {
		return nil, err
	}
	return o.prepare(ctx, buyer, "buy_tokens", args)
}

// SellTokens prepares sell_tokens(caller, token_id, amount, min_price).
func (o *Operations) SellTokens(ctx context.Context, seller, tokenID, amount, minPrice string) (*contract.Unsigned, error) {
	args, err := contract.EncodeArgs(
		contract.Arg{Value: seller, Kind: scval.KindAddress},
		contract.Arg{Value: tokenID, Kind: scval.KindString},
		contract.Arg{Value: amount, Kind: scval.KindI128},
		contract.Arg{Value: minPrice, Kind: scval.KindAmount},
	)
	if err != nil {
		return nil, err
	}
	return o.prepare(ctx, seller, "sell_tokens", args)
}

// GetTokenDetails reads get_token(token_id).
func (o *Operations) GetTokenDetails(ctx context.Context, caller, tokenID string) (*models.CreatorToken, error) {
	args, err := contract.EncodeArgs(
		contract.Arg{Value: tokenID, Kind: scval.KindString},
	)
	if err != nil {
		return nil, err
	}

	result, err := o.client.CallMethod(ctx, caller, contract.Call{
		ContractID: o.contractID,
		Method:     "get_token",
		Args:       args,
	})
	if err != nil {
		return nil, err
	}
	return tokenFromResult(result)
}

// GetAllTokens reads get_all_tokens(). A non-sequence result is an
// InvalidResponseFormat error, never a silent empty list.
func (o *Operations) GetAllTokens(ctx context.Context, caller string) ([]models.CreatorToken, error) {
	result, err := o.client.CallMethod(ctx, caller, contract.Call{
		ContractID: o.contractID,
		Method:     "get_all_tokens",
	})
	if err != nil {
		return nil, err
	}

	items, ok := result.([]any)
	if !ok {
		return nil, errs.New(errs.InvalidResponseFormat, "get_all_tokens returned %T, expected a sequence", result)
	}
	tokens := make([]models.CreatorToken, 0, len(items))
	for _, item := range items {
		tok, err := tokenFromResult(item)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *tok)
	}
	return tokens, nil
}

// GetBalance reads get_balance(owner, token_id) and returns the whole-unit
// balance as a decimal string.
func (o *Operations) GetBalance(ctx context.Context, caller, owner, tokenID string) (string, error) {
	args, err := contract.EncodeArgs(
		contract.Arg{Value: owner, Kind: scval.KindAddress},
		contract.Arg{Value: tokenID, Kind: scval.KindString},
	)
	if err != nil {
		return "", err
	}

	result, err := o.client.CallMethod(ctx, caller, contract.Call{
		ContractID: o.contractID,
		Method:     "get_balance",
		Args:       args,
	})
	if err != nil {
		return "", err
	}
	balance, ok := result.(*big.Int)
	if !ok {
		return "", errs.New(errs.InvalidResponseFormat, "get_balance returned %T, expected i128", result)
	}
	return balance.String(), nil
}

// prepare runs simulate then prepare for a mutating entry point and hands
// back the unsigned envelope.
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

// tokenFromResult maps a decoded contract struct onto CreatorToken.
func tokenFromResult(result any) (*models.CreatorToken, error) {
	fields, ok := result.(map[string]any)
	if !ok {
		return nil, errs.New(errs.InvalidResponseFormat, "token entry is %T, expected a map", result)
	}

	tok := &models.CreatorToken{}
	if v, ok := fields["id"].(string); ok {
		tok.ID = v
	}
	if v, ok := fields["creator"].(string); ok {
		tok.Creator = v
	}
	if v, ok := fields["name"].(string); ok {
		tok.Name = v
	}
	if v, ok := fields["symbol"].(string); ok {
		tok.Symbol = v
	}
	if v, ok := fields["decimals"].(uint32); ok {
		tok.Decimals = v
	}
	switch v := fields["supply"].(type) {
	case *big.Int:
		tok.Supply = v.String()
	case uint64:
		tok.Supply = new(big.Int).SetUint64(v).String()
	}
	if tok.ID == "" {
		return nil, errs.New(errs.InvalidResponseFormat, "token entry is missing its id")
	}
	return tok, nil
}
