package token

import (
	"context"
	"math/big"
	"testing"

	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"

	"creatorhub/internal/contract"
	"creatorhub/internal/errs"
	"creatorhub/internal/profile"
	"creatorhub/internal/rpc"
	"creatorhub/internal/scval"
)

const (
	testCaller         = "GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7"
	testTokenContract  = "CA3D5KRYM6CB7OWQ6TWYRR3Z4T7GNZLKERYNZGGA5SOAOPIFY6YQGAXE"
	testMarketContract = "CDLZFC3SYJYDZT7K67VZ75HPJVIEUVNIXF47ZG2FB2RMQQVU2HHGCYSC"
)

// fakeBackend answers every simulation with a canned response and captures
// the probe transaction for inspection.
type fakeBackend struct {
	simRes    *rpc.SimulateTransactionResponse
	lastProbe string
	sendCalls int
}

func (f *fakeBackend) SimulateTransaction(ctx context.Context, txBase64 string) (*rpc.SimulateTransactionResponse, error) {
	f.lastProbe = txBase64
	return f.simRes, nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, txBase64 string) (*rpc.SendTransactionResponse, error) {
	f.sendCalls++
	return &rpc.SendTransactionResponse{Status: rpc.SendStatusPending}, nil
}

func (f *fakeBackend) GetTransaction(ctx context.Context, hash string) (*rpc.GetTransactionResponse, error) {
	return &rpc.GetTransactionResponse{Status: rpc.TransactionStatusNotFound}, nil
}

func (f *fakeBackend) AccountSequence(ctx context.Context, address string) (int64, error) {
	return 17, nil
}

func newTestOperations(t *testing.T, simRes *rpc.SimulateTransactionResponse) (*Operations, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{simRes: simRes}
	client := contract.NewClient(profile.Testnet(profile.ContractIDs{
		Token:       testTokenContract,
		Marketplace: testMarketContract,
	}), backend, contract.Options{})
	return NewOperations(client), backend
}

func simResultOf(t *testing.T, native any) *rpc.SimulateTransactionResponse {
	t.Helper()
	val, err := scval.Encode(native, scval.KindAuto)
	if err != nil {
		t.Fatalf("Encode(%v): %v", native, err)
	}
	b64, err := xdr.MarshalBase64(val)
	if err != nil {
		t.Fatalf("MarshalBase64: %v", err)
	}
	return &rpc.SimulateTransactionResponse{
		MinResourceFee: 45000,
		Results:        []rpc.SimulateHostFunctionResult{{XDR: b64}},
		LatestLedger:   2000,
	}
}

// decodeProbe parses the captured simulation probe back into its invocation.
func decodeProbe(t *testing.T, txBase64 string) *xdr.InvokeContractArgs {
	t.Helper()
	generic, err := txnbuild.TransactionFromXDR(txBase64)
	if err != nil {
		t.Fatalf("probe does not parse: %v", err)
	}
	tx, ok := generic.Transaction()
	if !ok {
		t.Fatal("probe is not a simple transaction")
	}
	ops := tx.Operations()
	if len(ops) != 1 {
		t.Fatalf("probe has %d operations, want 1", len(ops))
	}
	invoke, ok := ops[0].(*txnbuild.InvokeHostFunction)
	if !ok {
		t.Fatalf("probe operation is %T, want InvokeHostFunction", ops[0])
	}
	return invoke.HostFunction.InvokeContract
}

func TestCreateTokenEncodesCall(t *testing.T) {
	ops, backend := newTestOperations(t, simResultOf(t, "tok-1"))

	unsigned, err := ops.CreateToken(context.Background(), testCaller, "Alice Coin", "ALC", 7, "1.25", "0.01")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	if unsigned.Envelope == "" {
		t.Fatal("expected an unsigned envelope")
	}
	if backend.sendCalls != 0 {
		t.Errorf("sendTransaction called %d times during prepare, want 0", backend.sendCalls)
	}

	invoke := decodeProbe(t, backend.lastProbe)
	if got := string(invoke.FunctionName); got != "create_token" {
		t.Errorf("method = %q, want create_token", got)
	}
	if len(invoke.Args) != 6 {
		t.Fatalf("args = %d, want 6", len(invoke.Args))
	}
	// base_price 1.25 scales to 12500000 raw units.
	price := invoke.Args[4].MustI128()
	if price.Hi != 0 || price.Lo != 12500000 {
		t.Errorf("base_price = (%d, %d), want (0, 12500000)", price.Hi, price.Lo)
	}
}

func TestBuyTokensScalesMaxPrice(t *testing.T) {
	ops, backend := newTestOperations(t, simResultOf(t, nil))

	if _, err := ops.BuyTokens(context.Background(), testCaller, "tok-1", "10", "2.5000000"); err != nil {
		t.Fatalf("BuyTokens: %v", err)
	}

	invoke := decodeProbe(t, backend.lastProbe)
	if got := string(invoke.FunctionName); got != "buy_tokens" {
		t.Errorf("method = %q, want buy_tokens", got)
	}
	if len(invoke.Args) != 4 {
		t.Fatalf("args = %d, want 4", len(invoke.Args))
	}
	amount := invoke.Args[2].MustI128()
	if amount.Hi != 0 || amount.Lo != 10 {
		t.Errorf("amount = (%d, %d), want (0, 10)", amount.Hi, amount.Lo)
	}
	maxPrice := invoke.Args[3].MustI128()
	if maxPrice.Hi != 0 || maxPrice.Lo != 25000000 {
		t.Errorf("max_price = (%d, %d), want (0, 25000000)", maxPrice.Hi, maxPrice.Lo)
	}
}

func TestGetAllTokensDecodesEntries(t *testing.T) {
	entries := []any{
		map[string]any{
			"id":       "tok-1",
			"creator":  testCaller,
			"name":     "Alice Coin",
			"symbol":   "ALC",
			"decimals": uint32(7),
			"supply":   big.NewInt(1000),
		},
		map[string]any{
			"id":       "tok-2",
			"creator":  testCaller,
			"name":     "Bob Coin",
			"symbol":   "BOB",
			"decimals": uint32(7),
			"supply":   big.NewInt(5),
		},
	}
	ops, _ := newTestOperations(t, simResultOf(t, entries))

	tokens, err := ops.GetAllTokens(context.Background(), testCaller)
	if err != nil {
		t.Fatalf("GetAllTokens: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("tokens = %d, want 2", len(tokens))
	}
	if tokens[0].ID != "tok-1" || tokens[0].Creator != testCaller {
		t.Errorf("first token = %+v", tokens[0])
	}
	if tokens[0].Supply != "1000" {
		t.Errorf("first token supply = %q, want 1000", tokens[0].Supply)
	}
	if tokens[1].Symbol != "BOB" {
		t.Errorf("second token symbol = %q, want BOB", tokens[1].Symbol)
	}
}

func TestGetAllTokensNonSequence(t *testing.T) {
	ops, _ := newTestOperations(t, simResultOf(t, uint32(4)))

	_, err := ops.GetAllTokens(context.Background(), testCaller)
	if !errs.IsKind(err, errs.InvalidResponseFormat) {
		t.Fatalf("error kind = %v, want InvalidResponseFormat (err: %v)", errs.KindOf(err), err)
	}
}

func TestGetTokenMissingID(t *testing.T) {
	ops, _ := newTestOperations(t, simResultOf(t, map[string]any{
		"name": "Nameless",
	}))

	_, err := ops.GetTokenDetails(context.Background(), testCaller, "tok-1")
	if !errs.IsKind(err, errs.InvalidResponseFormat) {
		t.Fatalf("error kind = %v, want InvalidResponseFormat (err: %v)", errs.KindOf(err), err)
	}
}

func TestGetBalance(t *testing.T) {
	ops, backend := newTestOperations(t, simResultOf(t, big.NewInt(123)))

	balance, err := ops.GetBalance(context.Background(), testCaller, testCaller, "tok-1")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance != "123" {
		t.Errorf("balance = %q, want 123", balance)
	}

	invoke := decodeProbe(t, backend.lastProbe)
	if got := string(invoke.FunctionName); got != "get_balance" {
		t.Errorf("method = %q, want get_balance", got)
	}
}

func TestMutatingPrepareFailsOnSimulationError(t *testing.T) {
	ops, backend := newTestOperations(t, &rpc.SimulateTransactionResponse{
		Error:        "HostError: Error(Contract, #5)",
		LatestLedger: 2000,
	})

	_, err := ops.MintTokens(context.Background(), testCaller, "tok-1", "100")
	if !errs.IsKind(err, errs.Simulation) {
		t.Fatalf("error kind = %v, want Simulation (err: %v)", errs.KindOf(err), err)
	}
	if backend.sendCalls != 0 {
		t.Errorf("sendTransaction called %d times after a rejected simulation, want 0", backend.sendCalls)
	}
}
