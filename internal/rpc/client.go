// Package rpc is a thin JSON-RPC 2.0 client for the Soroban RPC service.
// It exposes exactly the calls the contract pipeline consumes and keeps the
// request/response DTOs under local control.
package rpc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/stellar/go/xdr"
	"golang.org/x/time/rate"

	"creatorhub/internal/metrics"
)

// Options tunes a Client. The zero value is usable.
type Options struct {
	// HTTPClient overrides the transport. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// MaxRequestsPerSecond enables client-side rate limiting when > 0.
	MaxRequestsPerSecond float64

	// Burst is the rate limiter burst size. Defaults to twice the rate.
	Burst int
}

// Client talks to one Soroban RPC endpoint. Safe for concurrent use.
type Client struct {
	url     string
	cli     *jrpc2.Client
	limiter *rate.Limiter
}

// NewClient creates a client for the given endpoint.
func NewClient(url string, opts Options) *Client {
	channelOpts := &jhttp.ChannelOptions{}
	if opts.HTTPClient != nil {
		channelOpts.Client = opts.HTTPClient
	}
	ch := jhttp.NewChannel(url, channelOpts)

	var limiter *rate.Limiter
	if opts.MaxRequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = int(opts.MaxRequestsPerSecond * 2)
			if burst < 1 {
				burst = 1
			}
		}
		limiter = rate.NewLimiter(rate.Limit(opts.MaxRequestsPerSecond), burst)
	}

	return &Client{
		url:     url,
		cli:     jrpc2.NewClient(ch, nil),
		limiter: limiter,
	}
}

// call runs one instrumented JSON-RPC round trip.
func (c *Client) call(ctx context.Context, method string, params, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	err := c.cli.CallResult(ctx, method, params, result)
	metrics.RPCRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RPCErrorsTotal.WithLabelValues(method).Inc()
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// SimulateTransaction dry-runs a base64 envelope against current ledger
// state. Never mutates the ledger.
func (c *Client) SimulateTransaction(ctx context.Context, txBase64 string) (*SimulateTransactionResponse, error) {
	var res SimulateTransactionResponse
	err := c.call(ctx, "simulateTransaction", SimulateTransactionRequest{Transaction: txBase64}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// SendTransaction submits a signed base64 envelope once.
func (c *Client) SendTransaction(ctx context.Context, txBase64 string) (*SendTransactionResponse, error) {
	var res SendTransactionResponse
	err := c.call(ctx, "sendTransaction", SendTransactionRequest{Transaction: txBase64}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetTransaction queries the current status of a submitted transaction.
func (c *Client) GetTransaction(ctx context.Context, hash string) (*GetTransactionResponse, error) {
	var res GetTransactionResponse
	err := c.call(ctx, "getTransaction", GetTransactionRequest{Hash: hash}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetHealth reports node liveness and the latest known ledger.
func (c *Client) GetHealth(ctx context.Context) (*GetHealthResponse, error) {
	var res GetHealthResponse
	if err := c.call(ctx, "getHealth", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetLatestLedger returns the sequence of the most recently closed ledger.
func (c *Client) GetLatestLedger(ctx context.Context) (*GetLatestLedgerResponse, error) {
	var res GetLatestLedgerResponse
	if err := c.call(ctx, "getLatestLedger", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetLedgerEntries fetches ledger entries by base64 XDR keys.
func (c *Client) GetLedgerEntries(ctx context.Context, keys []string) (*GetLedgerEntriesResponse, error) {
	var res GetLedgerEntriesResponse
	err := c.call(ctx, "getLedgerEntries", GetLedgerEntriesRequest{Keys: keys}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// AccountSequence looks up the current sequence number of an account via its
// ledger entry.
func (c *Client) AccountSequence(ctx context.Context, address string) (int64, error) {
	accountID, err := xdr.AddressToAccountId(address)
	if err != nil {
		return 0, fmt.Errorf("invalid account address %q: %w", address, err)
	}

	key := xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeAccount,
		Account: &xdr.LedgerKeyAccount{
			AccountId: accountID,
		},
	}
	keyBase64, err := xdr.MarshalBase64(key)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal account key: %w", err)
	}

	res, err := c.GetLedgerEntries(ctx, []string{keyBase64})
	if err != nil {
		return 0, err
	}
	if len(res.Entries) == 0 {
		return 0, fmt.Errorf("account %s not found on ledger", address)
	}

	var entry xdr.LedgerEntryData
	if err := xdr.SafeUnmarshalBase64(res.Entries[0].DataXDR, &entry); err != nil {
		return 0, fmt.Errorf("failed to unmarshal account entry: %w", err)
	}
	account, ok := entry.GetAccount()
	if !ok {
		return 0, fmt.Errorf("ledger entry for %s is not an account", address)
	}
	return int64(account.SeqNum), nil
}

// Close releases the underlying JSON-RPC client.
func (c *Client) Close() error {
	return c.cli.Close()
}

// URL returns the endpoint this client talks to.
func (c *Client) URL() string {
	return c.url
}
