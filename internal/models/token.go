package models

// CreatorToken is a creator's token as read from the token contract.
// Considered stale immediately after fetch: there is no caching layer and
// the contract is the single source of truth.
type CreatorToken struct {
	ID       string `json:"id"`
	Creator  string `json:"creator"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Supply   string `json:"supply"`   // whole-unit integer, decimal string
	Decimals uint32 `json:"decimals"`
}
