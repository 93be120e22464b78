package models

import "time"

// Listing is a seller's standing offer on the marketplace contract. Created
// by a successful list call; mutated only by the contract, never
// client-side. Same freshness rule as CreatorToken: stale immediately after
// fetch.
type Listing struct {
	ID        uint64    `json:"id"`
	TokenID   string    `json:"token_id"`
	Seller    string    `json:"seller"`
	Amount    string    `json:"amount"` // whole-unit integer, decimal string
	Price     string    `json:"price"`  // canonical 7-decimal string
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
