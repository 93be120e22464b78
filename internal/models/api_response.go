package models

// TokenListResponse is a list of creator tokens for API responses.
type TokenListResponse struct {
	Tokens []CreatorToken `json:"tokens"`
	Total  int            `json:"total"`
}

// ListingListResponse is a paginated list of marketplace listings.
type ListingListResponse struct {
	Listings []Listing `json:"listings"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// CurvePreviewResponse is a client-side bonding curve preview. Indicative
// only: the contract enforces the actual pricing.
type CurvePreviewResponse struct {
	BasePrice string   `json:"base_price"`
	Slope     string   `json:"slope"`
	Supply    string   `json:"supply"`
	Points    []string `json:"points"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
