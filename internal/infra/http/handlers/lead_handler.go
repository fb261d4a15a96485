package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/brightforge/agency-leads/internal/entity"
	"github.com/brightforge/agency-leads/internal/infra/metrics"
	"github.com/brightforge/agency-leads/internal/usecase"
)

const (
	msgLeadSubmitted = "Lead submitted successfully"
	msgSyncFailed    = "Failed to create contact in HubSpot"
	msgInvalidJSON   = "Invalid JSON"
	msgRateLimited   = "Too many requests. Please try again later."

	maxBodyBytes = 100 << 10
)

type LeadSyncer interface {
	Execute(ctx context.Context, lead entity.Lead) usecase.SyncResult
}

type LeadHandler struct {
	syncer      LeadSyncer
	rateLimiter *RateLimiter
	logger      *zap.Logger
}

// NewLeadHandler builds the product-interest endpoint. A nil rateLimiter
// disables limiting.
func NewLeadHandler(syncer LeadSyncer, rateLimiter *RateLimiter, logger *zap.Logger) *LeadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadHandler{
		syncer:      syncer,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

type ProductInterestRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Company     string  `json:"company,omitempty"`
	ProductName string  `json:"productName"`
	Tier        string  `json:"tier"`
	Price       float64 `json:"price"`
	Message     string  `json:"message,omitempty"`
}

func (req ProductInterestRequest) lead() entity.Lead {
	return entity.Lead{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Company:     req.Company,
		ProductName: req.ProductName,
		Tier:        req.Tier,
		Price:       req.Price,
		Message:     req.Message,
	}
}

type ProductInterestResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	ContactID string `json:"contactId,omitempty"`
	Updated   bool   `json:"updated,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SubmitProductInterest handles POST /api/product-interest.
func (h *LeadHandler) SubmitProductInterest(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("product interest handler panicked", zap.Any("panic", rec))
			writeJSON(w, http.StatusInternalServerError, ProductInterestResponse{
				Success: false,
				Error:   fmt.Sprint(rec),
			})
		}
	}()

	if h.rateLimiter != nil && !h.rateLimiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, ProductInterestResponse{Success: false, Error: msgRateLimited})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ProductInterestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ProductInterestResponse{Success: false, Error: msgInvalidJSON})
		return
	}

	lead := req.lead()
	if err := usecase.ValidateLead(lead); err != nil {
		if de, ok := err.(*usecase.DomainError); ok {
			h.logger.Info("product interest rejected", zap.Strings("missing", de.Fields))
		}
		writeJSON(w, http.StatusBadRequest, ProductInterestResponse{Success: false, Error: err.Error()})
		return
	}

	result := h.syncer.Execute(r.Context(), lead)
	metrics.RecordLeadSync(string(result.Outcome))

	if !result.Success() {
		metrics.RecordIntegrationError("hubspot")
		h.logger.Error("lead sync failed", zap.String("error", result.Err))
		writeJSON(w, http.StatusInternalServerError, ProductInterestResponse{Success: false, Error: msgSyncFailed})
		return
	}

	writeJSON(w, http.StatusOK, ProductInterestResponse{
		Success:   true,
		Message:   msgLeadSubmitted,
		ContactID: result.ContactID,
		Updated:   result.Updated(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// getClientIP keys rate limiting on the peer host. chi's RealIP middleware
// has already replaced RemoteAddr with the proxied client address when one
// was forwarded; the port is dropped so every connection from one client
// shares a bucket.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
