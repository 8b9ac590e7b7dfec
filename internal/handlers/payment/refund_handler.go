package payment

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/edforge/coursepay/internal/domain"
)

type refundRequest struct {
	Reference string `json:"reference"`
	Amount    string `json:"amount"`
}

type refundResponse struct {
	RequestID string `json:"request_id"`
}

// HandleRefund issues a credit against the funding source identified by its
// gateway transaction reference.
// POST /api/v1/refunds
func (h *Handler) HandleRefund(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Reference == "" {
		h.respondError(w, http.StatusBadRequest, "reference is required", nil)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "amount is not a decimal", err)
		return
	}

	requestID, err := h.service.IssueCredit(r.Context(), req.Reference, amount)
	if err != nil {
		switch {
		case domain.IsDomainError(err, domain.ErrorCodeSourceNotFound):
			h.respondError(w, http.StatusNotFound, "funding source not found", err)
		case domain.IsDomainError(err, domain.ErrorCodeValidationFailed):
			h.respondError(w, http.StatusBadRequest, "refund rejected", err)
		case domain.IsGatewayError(err):
			h.logger.Error("Refund failed at gateway",
				zap.String("reference", req.Reference),
				zap.Error(err),
			)
			h.respondError(w, http.StatusBadGateway, "refund was not accepted by the gateway", err)
		default:
			h.logger.Error("Refund failed",
				zap.String("reference", req.Reference),
				zap.Error(err),
			)
			h.respondError(w, http.StatusInternalServerError, "refund failed", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, refundResponse{RequestID: requestID})
}
