package payment

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/edforge/coursepay/internal/domain"
)

// HandleNotification receives the gateway's form-encoded merchant
// notification. Non-success decisions are acknowledged with 200 so the
// gateway stops redelivering; only unverifiable or unprocessable
// notifications are rejected.
// POST /api/v1/notifications/cybersource
func (h *Handler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.respondError(w, http.StatusBadRequest, "malformed form body", err)
		return
	}

	response := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		response[key] = r.PostForm.Get(key)
	}

	settlement, err := h.service.HandleNotification(r.Context(), response)
	if err != nil {
		switch {
		case domain.IsDomainError(err, domain.ErrorCodeSignatureInvalid):
			h.respondError(w, http.StatusBadRequest, "signature verification failed", err)
		case domain.IsDecisionError(err):
			// The notification itself was valid; acknowledge it.
			h.respondJSON(w, http.StatusOK, map[string]string{
				"status": "acknowledged",
				"code":   string(domain.GetErrorCode(err)),
			})
		default:
			h.logger.Error("Notification processing failed",
				zap.String("order_number", response["req_reference_number"]),
				zap.Error(err),
			)
			h.respondError(w, http.StatusInternalServerError, "notification processing failed", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"status":         "settled",
		"transaction_id": settlement.TransactionID,
	})
}
