package marketplace

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"

	"creatorhub/internal/contract"
	"creatorhub/internal/errs"
	"creatorhub/internal/profile"
	"creatorhub/internal/rpc"
	"creatorhub/internal/scval"
	"creatorhub/internal/wallet"
)

const (
	testCaller         = "GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7"
	testTokenContract  = "CA3D5KRYM6CB7OWQ6TWYRR3Z4T7GNZLKERYNZGGA5SOAOPIFY6YQGAXE"
	testMarketContract = "CDLZFC3SYJYDZT7K67VZ75HPJVIEUVNIXF47ZG2FB2RMQQVU2HHGCYSC"
)

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
	return 23, nil
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
		MinResourceFee: 38000,
		Results:        []rpc.SimulateHostFunctionResult{{XDR: b64}},
		LatestLedger:   3000,
	}
}

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

func listingEntry(id uint64, price *big.Int, createdAt int64) map[string]any {
	return map[string]any{
		"id":         id,
		"token_id":   "tok-1",
		"seller":     testCaller,
		"amount":     big.NewInt(10),
		"price":      price,
		"is_active":  true,
		"created_at": uint64(createdAt),
	}
}

func TestListTokenScalesPrice(t *testing.T) {
	ops, backend := newTestOperations(t, simResultOf(t, uint64(1)))

	unsigned, err := ops.ListToken(context.Background(), testCaller, "tok-1", "10", "2.5000000")
	if err != nil {
		t.Fatalf("ListToken: %v", err)
	}
	if unsigned.Envelope == "" {
		t.Fatal("expected an unsigned envelope")
	}
	if backend.sendCalls != 0 {
		t.Errorf("sendTransaction called %d times during prepare, want 0", backend.sendCalls)
	}

	invoke := decodeProbe(t, backend.lastProbe)
	if got := string(invoke.FunctionName); got != "list_token" {
		t.Errorf("method = %q, want list_token", got)
	}
	if len(invoke.Args) != 4 {
		t.Fatalf("args = %d, want 4", len(invoke.Args))
	}
	price := invoke.Args[3].MustI128()
	if price.Hi != 0 || price.Lo != 25000000 {
		t.Errorf("price = (%d, %d), want (0, 25000000)", price.Hi, price.Lo)
	}
	if invoke.Args[1].Type != xdr.ScValTypeScvString {
		t.Errorf("token_id wire type = %v, want string", invoke.Args[1].Type)
	}
}

func TestBuyTokenEncodesListingID(t *testing.T) {
	ops, backend := newTestOperations(t, simResultOf(t, nil))

	if _, err := ops.BuyToken(context.Background(), testCaller, 42, "3"); err != nil {
		t.Fatalf("BuyToken: %v", err)
	}

	invoke := decodeProbe(t, backend.lastProbe)
	if got := string(invoke.FunctionName); got != "buy_token" {
		t.Errorf("method = %q, want buy_token", got)
	}
	if got := uint64(invoke.Args[1].MustU64()); got != 42 {
		t.Errorf("listing_id = %d, want 42", got)
	}
}

func TestGetListingDecodes(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	ops, _ := newTestOperations(t, simResultOf(t, listingEntry(7, big.NewInt(25000000), createdAt.Unix())))

	listing, err := ops.GetListing(context.Background(), testCaller, 7)
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if listing.ID != 7 {
		t.Errorf("id = %d, want 7", listing.ID)
	}
	if listing.Price != "2.5000000" {
		t.Errorf("price = %q, want 2.5000000", listing.Price)
	}
	if listing.Amount != "10" {
		t.Errorf("amount = %q, want 10", listing.Amount)
	}
	if !listing.IsActive {
		t.Error("listing should be active")
	}
	if !listing.CreatedAt.Equal(createdAt) {
		t.Errorf("created_at = %v, want %v", listing.CreatedAt, createdAt)
	}
}

func TestGetAllListingsPaginationDefaults(t *testing.T) {
	ops, backend := newTestOperations(t, simResultOf(t, []any{}))

	listings, err := ops.GetAllListings(context.Background(), testCaller, Query{})
	if err != nil {
		t.Fatalf("GetAllListings: %v", err)
	}
	if len(listings) != 0 {
		t.Errorf("listings = %d, want 0", len(listings))
	}

	invoke := decodeProbe(t, backend.lastProbe)
	if got := string(invoke.FunctionName); got != "get_all_listings" {
		t.Errorf("method = %q, want get_all_listings", got)
	}
	if got := uint32(invoke.Args[0].MustU32()); got != DefaultLimit {
		t.Errorf("limit = %d, want %d", got, DefaultLimit)
	}
	if got := uint32(invoke.Args[1].MustU32()); got != 0 {
		t.Errorf("offset = %d, want 0", got)
	}
}

func TestGetAllListingsNonSequence(t *testing.T) {
	ops, _ := newTestOperations(t, simResultOf(t, "not-a-list"))

	_, err := ops.GetAllListings(context.Background(), testCaller, Query{})
	if !errs.IsKind(err, errs.InvalidResponseFormat) {
		t.Fatalf("error kind = %v, want InvalidResponseFormat (err: %v)", errs.KindOf(err), err)
	}
}

func TestGetListingsBySeller(t *testing.T) {
	entries := []any{
		listingEntry(1, big.NewInt(10000000), time.Now().Unix()),
		listingEntry(2, big.NewInt(5000000), time.Now().Unix()),
	}
	ops, backend := newTestOperations(t, simResultOf(t, entries))

	listings, err := ops.GetListingsBySeller(context.Background(), testCaller, testCaller, Query{Limit: 10, Offset: 5})
	if err != nil {
		t.Fatalf("GetListingsBySeller: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("listings = %d, want 2", len(listings))
	}
	if listings[1].Price != "0.5000000" {
		t.Errorf("second price = %q, want 0.5000000", listings[1].Price)
	}

	invoke := decodeProbe(t, backend.lastProbe)
	if got := string(invoke.FunctionName); got != "get_listings_by_seller" {
		t.Errorf("method = %q, want get_listings_by_seller", got)
	}
	if got := uint32(invoke.Args[1].MustU32()); got != 10 {
		t.Errorf("limit = %d, want 10", got)
	}
	if got := uint32(invoke.Args[2].MustU32()); got != 5 {
		t.Errorf("offset = %d, want 5", got)
	}
}

// buyBackend extends the simulate-only fake with a scripted submission path.
type buyBackend struct {
	fakeBackend
	returnValue string
}

func (f *buyBackend) GetTransaction(ctx context.Context, hash string) (*rpc.GetTransactionResponse, error) {
	return &rpc.GetTransactionResponse{
		Status:      rpc.TransactionStatusSuccess,
		ReturnValue: f.returnValue,
	}, nil
}

func TestBuyTokenEndToEnd(t *testing.T) {
	kp, err := keypair.Random()
	if err != nil {
		t.Fatalf("keypair.Random: %v", err)
	}

	// The contract answers buy_token with the buyer's new balance.
	newBalance, err := scval.Encode(big.NewInt(13), scval.KindI128)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	balanceB64, err := xdr.MarshalBase64(newBalance)
	if err != nil {
		t.Fatalf("MarshalBase64: %v", err)
	}

	backend := &buyBackend{
		fakeBackend: fakeBackend{simRes: simResultOf(t, nil)},
		returnValue: balanceB64,
	}
	client := contract.NewClient(profile.Testnet(profile.ContractIDs{
		Token:       testTokenContract,
		Marketplace: testMarketContract,
	}), backend, contract.Options{PollInterval: 2 * time.Millisecond})
	ops := NewOperations(client)

	unsigned, err := ops.BuyToken(context.Background(), kp.Address(), 7, "10")
	if err != nil {
		t.Fatalf("BuyToken: %v", err)
	}

	signer, err := wallet.NewLocalSigner(kp.Seed())
	if err != nil {
		t.Fatalf("NewLocalSigner: %v", err)
	}
	signed, err := signer.Sign(context.Background(), unsigned.Envelope, network.TestNetworkPassphrase)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	outcome, err := client.Execute(context.Background(), signed)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcome.Status != contract.StatusSuccess {
		t.Fatalf("status = %q, want success", outcome.Status)
	}
	balance, ok := outcome.ReturnValue.(*big.Int)
	if !ok || balance.Int64() != 13 {
		t.Errorf("return value = %v (%T), want *big.Int 13", outcome.ReturnValue, outcome.ReturnValue)
	}
	if backend.sendCalls != 1 {
		t.Errorf("sendTransaction called %d times, want exactly 1", backend.sendCalls)
	}
}

func TestDeclinedSigningSubmitsNothing(t *testing.T) {
	ops, backend := newTestOperations(t, simResultOf(t, nil))

	unsigned, err := ops.CancelListing(context.Background(), testCaller, 3)
	if err != nil {
		t.Fatalf("CancelListing: %v", err)
	}
	if unsigned.Envelope == "" {
		t.Fatal("expected an unsigned envelope")
	}

	var signer wallet.Signer = decliningSigner{}
	_, err = signer.Sign(context.Background(), unsigned.Envelope, network.TestNetworkPassphrase)
	if !errors.Is(err, wallet.ErrDeclined) {
		t.Fatalf("err = %v, want ErrDeclined", err)
	}
	if backend.sendCalls != 0 {
		t.Errorf("sendTransaction called %d times after a declined signature, want 0", backend.sendCalls)
	}
}

type decliningSigner struct{}

func (decliningSigner) Sign(context.Context, string, string) (string, error) {
	return "", wallet.ErrDeclined
}

func TestUpdateListingPrice(t *testing.T) {
	ops, backend := newTestOperations(t, simResultOf(t, nil))

	if _, err := ops.UpdateListingPrice(context.Background(), testCaller, 9, "0.0000001"); err != nil {
		t.Fatalf("UpdateListingPrice: %v", err)
	}

	invoke := decodeProbe(t, backend.lastProbe)
	if got := string(invoke.FunctionName); got != "update_listing_price" {
		t.Errorf("method = %q, want update_listing_price", got)
	}
	price := invoke.Args[2].MustI128()
	if price.Hi != 0 || price.Lo != 1 {
		t.Errorf("new_price = (%d, %d), want (0, 1)", price.Hi, price.Lo)
	}
}
