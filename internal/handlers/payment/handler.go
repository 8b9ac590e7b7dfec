// Package payment exposes the payment core over HTTP: checkout initiation,
// the gateway notification endpoint and refunds.
package payment

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/edforge/coursepay/internal/domain"
)

// Service defines the payment operations the handlers depend on
type Service interface {
	CreateCheckout(ctx context.Context, basket *domain.Basket) (*domain.TransactionParameters, error)
	HandleNotification(ctx context.Context, response map[string]string) (*domain.Settlement, error)
	IssueCredit(ctx context.Context, reference string, amount decimal.Decimal) (string, error)
}

// Handler serves the payment HTTP endpoints
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new payment handler
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string, err error) {
	h.respondJSON(w, status, errorResponse{
		Error: message,
		Code:  string(domain.GetErrorCode(err)),
	})
}
