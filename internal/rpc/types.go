package rpc

// Request and response shapes for the Soroban RPC JSON-RPC methods this
// system consumes. Field names follow the wire protocol; XDR payloads travel
// base64-encoded.

// Transaction status values returned by getTransaction. NOT_FOUND is what
// the service reports while a submitted transaction has not yet been
// included in a ledger.
const (
	TransactionStatusSuccess  = "SUCCESS"
	TransactionStatusFailed   = "FAILED"
	TransactionStatusNotFound = "NOT_FOUND"
)

// Submission status values returned by sendTransaction.
const (
	SendStatusPending       = "PENDING"
	SendStatusDuplicate     = "DUPLICATE"
	SendStatusError         = "ERROR"
	SendStatusTryAgainLater = "TRY_AGAIN_LATER"
)

// SimulateTransactionRequest asks the service to dry-run a transaction
// against current ledger state.
type SimulateTransactionRequest struct {
	Transaction string `json:"transaction"`
}

// SimulateHostFunctionResult is the per-invocation result of a simulation.
type SimulateHostFunctionResult struct {
	Auth []string `json:"auth,omitempty"`
	XDR  string   `json:"xdr,omitempty"`
}

// RestorePreamble is populated when the simulated call touches archived
// ledger entries that must be restored first.
type RestorePreamble struct {
	TransactionData string `json:"transactionData"`
	MinResourceFee  int64  `json:"minResourceFee,string"`
}

// SimulateTransactionResponse carries the footprint, resource fee and return
// value of a dry run, or the contract's own error payload verbatim.
type SimulateTransactionResponse struct {
	Error           string                       `json:"error,omitempty"`
	TransactionData string                       `json:"transactionData,omitempty"`
	MinResourceFee  int64                        `json:"minResourceFee,string,omitempty"`
	Events          []string                     `json:"events,omitempty"`
	Results         []SimulateHostFunctionResult `json:"results,omitempty"`
	RestorePreamble *RestorePreamble             `json:"restorePreamble,omitempty"`
	LatestLedger    uint32                       `json:"latestLedger"`
}

// SendTransactionRequest submits a signed envelope.
type SendTransactionRequest struct {
	Transaction string `json:"transaction"`
}

// SendTransactionResponse is the immediate acknowledgement of a submission.
type SendTransactionResponse struct {
	Status                string `json:"status"`
	Hash                  string `json:"hash"`
	ErrorResultXDR        string `json:"errorResultXdr,omitempty"`
	LatestLedger          uint32 `json:"latestLedger"`
	LatestLedgerCloseTime string `json:"latestLedgerCloseTime"`
}

// GetTransactionRequest queries the terminal state of a submission by hash.
type GetTransactionRequest struct {
	Hash string `json:"hash"`
}

// GetTransactionResponse describes a transaction's fate once known.
type GetTransactionResponse struct {
	Status                string `json:"status"`
	LatestLedger          uint32 `json:"latestLedger"`
	LatestLedgerCloseTime string `json:"latestLedgerCloseTime"`
	OldestLedger          uint32 `json:"oldestLedger"`
	OldestLedgerCloseTime string `json:"oldestLedgerCloseTime"`
	ApplicationOrder      int32  `json:"applicationOrder,omitempty"`
	EnvelopeXDR           string `json:"envelopeXdr,omitempty"`
	ResultXDR             string `json:"resultXdr,omitempty"`
	ResultMetaXDR         string `json:"resultMetaXdr,omitempty"`
	ReturnValue           string `json:"returnValue,omitempty"`
	Ledger                uint32 `json:"ledger,omitempty"`
	CreatedAt             string `json:"createdAt,omitempty"`
}

// GetHealthResponse reports node liveness.
type GetHealthResponse struct {
	Status                string `json:"status"`
	LatestLedger          uint32 `json:"latestLedger"`
	OldestLedger          uint32 `json:"oldestLedger"`
	LedgerRetentionWindow uint32 `json:"ledgerRetentionWindow"`
}

// GetLatestLedgerResponse reports the most recently closed ledger.
type GetLatestLedgerResponse struct {
	ID              string `json:"id"`
	ProtocolVersion uint32 `json:"protocolVersion"`
	Sequence        uint32 `json:"sequence"`
}

// GetLedgerEntriesRequest fetches current ledger entries by their XDR keys.
type GetLedgerEntriesRequest struct {
	Keys []string `json:"keys"`
}

// LedgerEntryResult is one ledger entry in a getLedgerEntries response.
type LedgerEntryResult struct {
	KeyXDR             string `json:"key"`
	DataXDR            string `json:"xdr"`
	LastModifiedLedger uint32 `json:"lastModifiedLedgerSeq"`
}

// GetLedgerEntriesResponse carries the requested entries; keys with no
// current entry are simply absent.
type GetLedgerEntriesResponse struct {
	Entries      []LedgerEntryResult `json:"entries"`
	LatestLedger uint32              `json:"latestLedger"`
}
