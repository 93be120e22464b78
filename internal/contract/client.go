// Package contract implements the contract invocation pipeline: build an
// unsigned call, simulate it against current ledger state, turn the
// simulation into a fee-and-time-bounded unsigned envelope, accept an
// externally-signed envelope, submit it once and poll until a terminal
// outcome.
//
// The pipeline is split into independently callable steps because signing
// happens outside this package (the wallet boundary). No state is retained
// between Prepare and Execute: Execute resumes from the serialized envelope
// alone.
package contract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"

	"creatorhub/internal/errs"
	"creatorhub/internal/metrics"
	"creatorhub/internal/profile"
	"creatorhub/internal/rpc"
	"creatorhub/internal/scval"
)

// Default pipeline constants. Fees are stroops; the base fee covers
// inclusion only, the simulated resource fee is added on top.
const (
	DefaultBaseFee      = txnbuild.MinBaseFee
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 1 * time.Second
)

// Backend is the slice of the RPC surface the pipeline consumes. *rpc.Client
// satisfies it; tests substitute scripted fakes.
type Backend interface {
	SimulateTransaction(ctx context.Context, txBase64 string) (*rpc.SimulateTransactionResponse, error)
	SendTransaction(ctx context.Context, txBase64 string) (*rpc.SendTransactionResponse, error)
	GetTransaction(ctx context.Context, hash string) (*rpc.GetTransactionResponse, error)
	AccountSequence(ctx context.Context, address string) (int64, error)
}

// Journal records terminal submission outcomes for diagnostics. Recording is
// best-effort and never affects the outcome itself.
type Journal interface {
	Record(ctx context.Context, outcome *Outcome)
}

// Call identifies one contract invocation: target contract, method name and
// ordered, already-encoded arguments. A Call is constructed fresh per
// invocation and never reused.
type Call struct {
	ContractID string
	Method     string
	Args       []xdr.ScVal
}

// SimulationResult is the consumed-immediately product of a dry run. It
// carries everything Prepare needs to build an envelope without re-querying
// the network.
type SimulationResult struct {
	Call           Call
	SourceAccount  string
	SourceSequence int64

	MinResourceFee  int64
	TransactionData *xdr.SorobanTransactionData
	Auth            []xdr.SorobanAuthorizationEntry
	ReturnValue     *xdr.ScVal
	LatestLedger    uint32

	// Error holds the contract's own error payload verbatim when the probe
	// was rejected. A result with a populated Error can never be prepared.
	Error string
}

// Status is the submission outcome state. Pending is the only non-terminal
// state and always resolves or times out.
type Status string

const (
	StatusPending  Status = "pending"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusRejected Status = "rejected"
)

// Outcome is the terminal result of a submission.
type Outcome struct {
	Hash        string
	Status      Status
	ReturnValue any
	RawError    string
}

// PrepareOptions tunes envelope construction. Zero values fall back to the
// client defaults.
type PrepareOptions struct {
	// Fee is the inclusion fee in stroops. The simulated resource fee is
	// always added on top.
	Fee int64

	// Timeout closes the envelope's time window at now+Timeout.
	Timeout time.Duration

	// NoExpiry requests an open-ended time window. The poll loop then runs
	// until the caller's context is cancelled.
	NoExpiry bool
}

// Options tunes a Client.
type Options struct {
	BaseFee      int64
	Timeout      time.Duration
	PollInterval time.Duration
	Journal      Journal
}

// Client drives the simulate/prepare/execute pipeline against one network
// profile. Safe for concurrent use; each invocation is an independent value.
type Client struct {
	profile      profile.Profile
	backend      Backend
	baseFee      int64
	timeout      time.Duration
	pollInterval time.Duration
	journal      Journal
}

// NewClient creates a pipeline client for the given profile and backend.
func NewClient(p profile.Profile, backend Backend, opts Options) *Client {
	if opts.BaseFee <= 0 {
		opts.BaseFee = DefaultBaseFee
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Client{
		profile:      p,
		backend:      backend,
		baseFee:      opts.BaseFee,
		timeout:      opts.Timeout,
		pollInterval: opts.PollInterval,
		journal:      opts.Journal,
	}
}

// Simulate builds a zero-effect probe transaction for the call at the
// caller's current sequence and dry-runs it against current ledger state.
// The ledger is never mutated. A contract-level rejection returns both the
// result (with the verbatim error payload) and a Simulation error.
func (c *Client) Simulate(ctx context.Context, caller string, call Call) (*SimulationResult, error) {
	sequence, err := c.backend.AccountSequence(ctx, caller)
	if err != nil {
		metrics.SimulationsTotal.WithLabelValues(call.Method, "error").Inc()
		return nil, errs.Wrap(errs.Simulation, err, "failed to resolve sequence for %s", caller)
	}

	tx, err := c.buildInvokeTx(caller, sequence, call, c.baseFee, txnbuild.NewTimeout(int64(c.timeout.Seconds())), nil, xdr.TransactionExt{})
	if err != nil {
		metrics.SimulationsTotal.WithLabelValues(call.Method, "error").Inc()
		return nil, err
	}
	txBase64, err := tx.Base64()
	if err != nil {
		metrics.SimulationsTotal.WithLabelValues(call.Method, "error").Inc()
		return nil, errs.Wrap(errs.Simulation, err, "failed to serialize probe transaction")
	}

	res, err := c.backend.SimulateTransaction(ctx, txBase64)
	if err != nil {
		metrics.SimulationsTotal.WithLabelValues(call.Method, "error").Inc()
		return nil, errs.Wrap(errs.Simulation, err, "simulation round trip failed")
	}

	sim := &SimulationResult{
		Call:           call,
		SourceAccount:  caller,
		SourceSequence: sequence,
		MinResourceFee: res.MinResourceFee,
		LatestLedger:   res.LatestLedger,
	}

	if res.Error != "" {
		sim.Error = res.Error
		metrics.SimulationsTotal.WithLabelValues(call.Method, "rejected").Inc()
		return sim, errs.New(errs.Simulation, "contract rejected %s: %s", call.Method, res.Error)
	}

	if res.TransactionData != "" {
		var data xdr.SorobanTransactionData
		if err := xdr.SafeUnmarshalBase64(res.TransactionData, &data); err != nil {
			metrics.SimulationsTotal.WithLabelValues(call.Method, "error").Inc()
			return nil, errs.Wrap(errs.Simulation, err, "malformed transaction data in simulation response")
		}
		sim.TransactionData = &data
	}

	for _, result := range res.Results {
		for _, authBase64 := range result.Auth {
			var entry xdr.SorobanAuthorizationEntry
			if err := xdr.SafeUnmarshalBase64(authBase64, &entry); err != nil {
				metrics.SimulationsTotal.WithLabelValues(call.Method, "error").Inc()
				return nil, errs.Wrap(errs.Simulation, err, "malformed auth entry in simulation response")
			}
			sim.Auth = append(sim.Auth, entry)
		}
		if result.XDR != "" {
			var value xdr.ScVal
			if err := xdr.SafeUnmarshalBase64(result.XDR, &value); err != nil {
				metrics.SimulationsTotal.WithLabelValues(call.Method, "error").Inc()
				return nil, errs.Wrap(errs.Simulation, err, "malformed return value in simulation response")
			}
			sim.ReturnValue = &value
		}
	}

	metrics.SimulationsTotal.WithLabelValues(call.Method, "ok").Inc()
	return sim, nil
}

// Prepare turns a successful simulation into an unsigned, fee-and-time-
// bounded envelope ready for external signing. A simulation that carries an
// error can never produce an envelope.
func (c *Client) Prepare(sim *SimulationResult, opts PrepareOptions) (string, error) {
	if sim == nil {
		return "", errs.New(errs.Prepare, "nil simulation result")
	}
	if sim.Error != "" {
		return "", errs.New(errs.Prepare, "simulation carried an error: %s", sim.Error)
	}

	fee := opts.Fee
	if fee <= 0 {
		fee = c.baseFee
	}

	var timeBounds txnbuild.TimeBounds
	switch {
	case opts.NoExpiry:
		timeBounds = txnbuild.NewInfiniteTimeout()
	case opts.Timeout > 0:
		timeBounds = txnbuild.NewTimeout(int64(opts.Timeout.Seconds()))
	default:
		timeBounds = txnbuild.NewTimeout(int64(c.timeout.Seconds()))
	}

	ext := xdr.TransactionExt{}
	if sim.TransactionData != nil {
		ext = xdr.TransactionExt{V: 1, SorobanData: sim.TransactionData}
	}

	tx, err := c.buildInvokeTx(sim.SourceAccount, sim.SourceSequence, sim.Call, fee+sim.MinResourceFee, timeBounds, sim.Auth, ext)
	if err != nil {
		return "", errs.Wrap(errs.Prepare, err, "failed to build envelope")
	}
	envelope, err := tx.Base64()
	if err != nil {
		return "", errs.Wrap(errs.Prepare, err, "failed to serialize envelope")
	}
	return envelope, nil
}

// Execute submits a signed envelope exactly once and polls transaction
// status on a fixed interval until a terminal outcome. The overall deadline
// derives from the envelope's own time bound; an envelope still pending when
// its bound expires resolves to a rejected outcome with a TimeoutRejected
// error, never an unresolved state. Status checks are the only thing
// retried; the envelope is never resubmitted.
func (c *Client) Execute(ctx context.Context, signedEnvelope string) (*Outcome, error) {
	generic, err := txnbuild.TransactionFromXDR(signedEnvelope)
	if err != nil {
		return nil, errs.Wrap(errs.Submission, err, "malformed signed envelope")
	}
	tx, ok := generic.Transaction()
	if !ok {
		return nil, errs.New(errs.Submission, "envelope is not a simple transaction")
	}
	hash, err := tx.HashHex(c.profile.NetworkPassphrase)
	if err != nil {
		return nil, errs.Wrap(errs.Submission, err, "failed to hash envelope")
	}

	// The envelope's upper time bound caps the whole poll loop. MaxTime 0
	// means the caller asked for no expiry.
	var deadline time.Time
	if maxTime := tx.Timebounds().MaxTime; maxTime > 0 {
		deadline = time.Unix(maxTime, 0)
	}

	start := time.Now()
	send, err := c.backend.SendTransaction(ctx, signedEnvelope)
	if err != nil {
		return nil, errs.Wrap(errs.Submission, err, "submission round trip failed")
	}

	switch send.Status {
	case rpc.SendStatusPending, rpc.SendStatusDuplicate:
		// DUPLICATE means a previous attempt already reached the network;
		// polling resolves it either way.
	case rpc.SendStatusError, rpc.SendStatusTryAgainLater:
		outcome := &Outcome{Hash: hash, Status: StatusRejected, RawError: send.ErrorResultXDR}
		c.record(ctx, outcome)
		metrics.SubmissionsTotal.WithLabelValues(string(StatusRejected)).Inc()
		return outcome, errs.New(errs.Submission, "transport rejected envelope %s: %s", hash, send.Status)
	default:
		outcome := &Outcome{Hash: hash, Status: StatusRejected, RawError: send.ErrorResultXDR}
		c.record(ctx, outcome)
		metrics.SubmissionsTotal.WithLabelValues(string(StatusRejected)).Inc()
		return outcome, errs.New(errs.Submission, "unknown submission status %q for %s", send.Status, hash)
	}

	outcome, err := c.poll(ctx, hash, deadline)
	if outcome != nil {
		c.record(ctx, outcome)
		metrics.SubmissionsTotal.WithLabelValues(string(outcome.Status)).Inc()
		metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
	}
	return outcome, err
}

// poll re-queries transaction status every pollInterval with no backoff.
// It only ever retries the status check.
func (c *Client) poll(ctx context.Context, hash string, deadline time.Time) (*Outcome, error) {
	attempts := 0
	defer func() {
		metrics.PollAttempts.Observe(float64(attempts))
	}()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		attempts++
		res, err := c.backend.GetTransaction(ctx, hash)
		if err != nil {
			// Transient status-check failures are absorbed by the loop; the
			// deadline still bounds them.
			slog.Warn("status check failed, will retry",
				"hash", hash,
				"attempt", attempts,
				"error", err,
			)
		} else {
			switch res.Status {
			case rpc.TransactionStatusSuccess:
				return c.successOutcome(hash, res), nil
			case rpc.TransactionStatusFailed:
				outcome := &Outcome{Hash: hash, Status: StatusFailed, RawError: res.ResultXDR}
				return outcome, errs.New(errs.TransactionFailed, "contract execution reverted for %s", hash)
			case rpc.TransactionStatusNotFound:
				// Not yet included; keep polling.
			default:
				return nil, errs.New(errs.InvalidResponseFormat, "unknown transaction status %q for %s", res.Status, hash)
			}
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			outcome := &Outcome{
				Hash:     hash,
				Status:   StatusRejected,
				RawError: fmt.Sprintf("still pending when envelope time bound expired at %s", deadline.UTC().Format(time.RFC3339)),
			}
			return outcome, errs.New(errs.TimeoutRejected, "envelope time bound expired while pending: %s", hash)
		}

		select {
		case <-ctx.Done():
			return nil, errs.Wrap(errs.Cancelled, ctx.Err(), "polling aborted for %s", hash)
		case <-ticker.C:
		}
	}
}

// successOutcome decodes the return value of a successful transaction. A
// decode failure is logged as a warning, not escalated: the transaction's
// success stands independent of whether the return payload parses.
func (c *Client) successOutcome(hash string, res *rpc.GetTransactionResponse) *Outcome {
	outcome := &Outcome{Hash: hash, Status: StatusSuccess}

	value, err := extractReturnValue(res)
	if err != nil {
		slog.Warn("failed to extract return value from successful transaction",
			"hash", hash,
			"error", err,
		)
		return outcome
	}
	if value == nil {
		return outcome
	}

	native, err := scval.Decode(*value)
	if err != nil {
		slog.Warn("failed to decode return value from successful transaction",
			"hash", hash,
			"error", err,
		)
		return outcome
	}
	outcome.ReturnValue = native
	return outcome
}

// CallMethod runs a read-only query: simulate only, decode the returned
// value directly. No envelope is ever built and nothing is submitted.
func (c *Client) CallMethod(ctx context.Context, caller string, call Call) (any, error) {
	metrics.ReadCallsTotal.WithLabelValues(call.Method).Inc()

	sim, err := c.Simulate(ctx, caller, call)
	if err != nil {
		return nil, err
	}
	if sim.ReturnValue == nil {
		return nil, nil
	}
	return scval.Decode(*sim.ReturnValue)
}

// buildInvokeTx assembles a single-operation invoke-host-function
// transaction at the given sequence.
func (c *Client) buildInvokeTx(
	caller string,
	sequence int64,
	call Call,
	baseFee int64,
	timeBounds txnbuild.TimeBounds,
	auth []xdr.SorobanAuthorizationEntry,
	ext xdr.TransactionExt,
) (*txnbuild.Transaction, error) {
	contractVal, err := scval.Encode(call.ContractID, scval.KindAddress)
	if err != nil {
		return nil, errs.Wrap(errs.Simulation, err, "invalid contract ID %q", call.ContractID)
	}

	op := &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: *contractVal.Address,
				FunctionName:    xdr.ScSymbol(call.Method),
				Args:            xdr.ScVec(call.Args),
			},
		},
		Auth:          auth,
		SourceAccount: caller,
		Ext:           ext,
	}

	sourceAccount := txnbuild.NewSimpleAccount(caller, sequence)
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &sourceAccount,
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{op},
		BaseFee:              baseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: timeBounds},
	})
	if err != nil {
		return nil, errs.Wrap(errs.Simulation, err, "failed to build transaction for %s", call.Method)
	}
	return tx, nil
}

// extractReturnValue pulls the ScVal return payload out of a getTransaction
// response, preferring the dedicated field and falling back to the soroban
// transaction meta.
func extractReturnValue(res *rpc.GetTransactionResponse) (*xdr.ScVal, error) {
	if res.ReturnValue != "" {
		var value xdr.ScVal
		if err := xdr.SafeUnmarshalBase64(res.ReturnValue, &value); err != nil {
			return nil, fmt.Errorf("malformed returnValue: %w", err)
		}
		return &value, nil
	}

	if res.ResultMetaXDR == "" {
		return nil, nil
	}
	var meta xdr.TransactionMeta
	if err := xdr.SafeUnmarshalBase64(res.ResultMetaXDR, &meta); err != nil {
		return nil, fmt.Errorf("malformed result meta: %w", err)
	}
	if v3, ok := meta.GetV3(); ok && v3.SorobanMeta != nil {
		value := v3.SorobanMeta.ReturnValue
		return &value, nil
	}
	if v4, ok := meta.GetV4(); ok && v4.SorobanMeta != nil && v4.SorobanMeta.ReturnValue != nil {
		return v4.SorobanMeta.ReturnValue, nil
	}
	return nil, nil
}

// record journals a terminal outcome, best-effort.
func (c *Client) record(ctx context.Context, outcome *Outcome) {
	if c.journal == nil {
		return
	}
	c.journal.Record(ctx, outcome)
}

// Profile returns the network profile this client is bound to.
func (c *Client) Profile() profile.Profile {
	return c.profile
}
