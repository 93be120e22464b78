package api

import (
	"encoding/json"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"creatorhub/internal/curve"
	"creatorhub/internal/errs"
	"creatorhub/internal/marketplace"
	"creatorhub/internal/metrics"
	"creatorhub/internal/models"
)

// handleIndex returns basic service information
// GET / - Returns service info and available endpoints
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	info := map[string]interface{}{
		"service":     "CreatorHub",
		"version":     "1.0.0",
		"description": "Creator token and marketplace contract gateway",
		"endpoints": map[string]string{
			"GET /":              "This page - Service information",
			"GET /health":        "Health check endpoint",
			"GET /metrics":       "Prometheus metrics for monitoring",
			"GET /tokens":        "List all creator tokens",
			"GET /tokens/{id}":   "Get token details",
			"GET /listings":      "List marketplace listings (supports ?seller=, ?token=, ?limit=, ?offset=)",
			"GET /listings/{id}": "Get a single listing",
			"GET /curve":         "Bonding curve preview (?base=, ?slope=, ?supply=, ?points=)",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

// handleHealth reports whether the RPC node behind us is reachable
// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health, err := s.rpcClient.GetHealth(r.Context())
	if err != nil {
		s.sendError(w, "RPC node unreachable", http.StatusServiceUnavailable)
		return
	}

	s.sendJSON(w, map[string]interface{}{
		"status":        "ok",
		"rpc_status":    health.Status,
		"latest_ledger": health.LatestLedger,
	}, http.StatusOK)
}

// handleMetrics exposes Prometheus metrics
// GET /metrics
func (s *Server) handleMetrics() http.Handler {
	return promhttp.Handler()
}

// handleListTokens fetches all tokens fresh from the contract
// GET /tokens
func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.tokens.GetAllTokens(r.Context(), s.queryAccount)
	if err != nil {
		s.sendContractError(w, err)
		return
	}

	s.sendJSON(w, models.TokenListResponse{
		Tokens: tokens,
		Total:  len(tokens),
	}, http.StatusOK)
}

// handleGetToken fetches one token by ID
// GET /tokens/{id}
func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request, tokenID string) {
	tok, err := s.tokens.GetTokenDetails(r.Context(), s.queryAccount, tokenID)
	if err != nil {
		s.sendContractError(w, err)
		return
	}
	s.sendJSON(w, tok, http.StatusOK)
}

// handleListListings fetches listings with optional seller/token filters
// GET /listings?seller=&token=&limit=&offset=
func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	query := parsePagination(r)
	seller := r.URL.Query().Get("seller")
	tokenID := r.URL.Query().Get("token")

	var (
		listings []models.Listing
		err      error
	)
	switch {
	case seller != "":
		listings, err = s.market.GetListingsBySeller(r.Context(), s.queryAccount, seller, query)
	case tokenID != "":
		listings, err = s.market.GetListingsByToken(r.Context(), s.queryAccount, tokenID, query)
	default:
		listings, err = s.market.GetAllListings(r.Context(), s.queryAccount, query)
	}
	if err != nil {
		s.sendContractError(w, err)
		return
	}

	s.sendJSON(w, models.ListingListResponse{
		Listings: listings,
		Total:    len(listings),
		Limit:    int(query.Limit),
		Offset:   int(query.Offset),
	}, http.StatusOK)
}

// handleGetListing fetches one listing by numeric ID
// GET /listings/{id}
func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request, rawID string) {
	listingID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		s.sendError(w, "Listing ID must be a number", http.StatusBadRequest)
		return
	}

	listing, err := s.market.GetListing(r.Context(), s.queryAccount, listingID)
	if err != nil {
		s.sendContractError(w, err)
		return
	}
	s.sendJSON(w, listing, http.StatusOK)
}

// handleCurvePreview renders a client-side bonding curve preview. The
// contract enforces the real pricing; this endpoint only charts it.
// GET /curve?base=&slope=&supply=&points=
func (s *Server) handleCurvePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	base := q.Get("base")
	slope := q.Get("slope")
	if base == "" || slope == "" {
		s.sendError(w, "base and slope query parameters are required", http.StatusBadRequest)
		return
	}

	c, err := curve.New(base, slope)
	if err != nil {
		s.sendError(w, "base and slope must be decimal amounts", http.StatusBadRequest)
		return
	}

	supply := big.NewInt(0)
	if raw := q.Get("supply"); raw != "" {
		parsed, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			s.sendError(w, "supply must be a whole-unit integer", http.StatusBadRequest)
			return
		}
		supply = parsed
	}

	points := 20
	if raw := q.Get("points"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			s.sendError(w, "points must be between 1 and 500", http.StatusBadRequest)
			return
		}
		points = parsed
	}

	s.sendJSON(w, models.CurvePreviewResponse{
		BasePrice: base,
		Slope:     slope,
		Supply:    supply.String(),
		Points:    c.Preview(supply, 1, points),
	}, http.StatusOK)
}

// sendContractError maps taxonomy kinds onto HTTP status codes.
func (s *Server) sendContractError(w http.ResponseWriter, err error) {
	slog.Error("contract read failed", "error", err)
	metrics.ErrorsTotal.WithLabelValues(string(errs.KindOf(err))).Inc()

	status := http.StatusBadGateway
	switch errs.KindOf(err) {
	case errs.InvalidResponseFormat:
		status = http.StatusBadGateway
	case errs.Simulation:
		status = http.StatusUnprocessableEntity
	case errs.Cancelled:
		status = http.StatusRequestTimeout
	}
	s.sendError(w, err.Error(), status)
}

// parsePagination reads limit/offset query parameters with the marketplace
// defaults.
func parsePagination(r *http.Request) marketplace.Query {
	query := marketplace.Query{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.ParseUint(raw, 10, 32); err == nil && limit > 0 {
			query.Limit = uint32(limit)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.ParseUint(raw, 10, 32); err == nil {
			query.Offset = uint32(offset)
		}
	}
	return query
}
