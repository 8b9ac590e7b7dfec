package payment

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/edforge/coursepay/internal/domain"
)

type checkoutLine struct {
	SKU             string `json:"sku"`
	Title           string `json:"title"`
	ClassSlug       string `json:"class_slug"`
	CourseKey       string `json:"course_key"`
	CertificateType string `json:"certificate_type"`
	Quantity        int    `json:"quantity"`
}

type checkoutRequest struct {
	OrderNumber  string         `json:"order_number"`
	Owner        string         `json:"owner"`
	Currency     string         `json:"currency"`
	TotalInclTax string         `json:"total_incl_tax"`
	Lines        []checkoutLine `json:"lines"`
}

type checkoutResponse struct {
	PaymentPageURL string            `json:"payment_page_url"`
	Fields         map[string]string `json:"fields"`
}

// HandleCheckout builds signed transaction parameters for a basket snapshot.
// POST /api/v1/checkout
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	total, err := decimal.NewFromString(req.TotalInclTax)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "total_incl_tax is not a decimal", err)
		return
	}

	basket := &domain.Basket{
		OrderNumber:  req.OrderNumber,
		Owner:        req.Owner,
		Currency:     req.Currency,
		TotalInclTax: total,
	}
	for _, line := range req.Lines {
		basket.Lines = append(basket.Lines, domain.BasketLine{
			Product: domain.Product{
				SKU:             line.SKU,
				Title:           line.Title,
				ClassSlug:       line.ClassSlug,
				CourseKey:       line.CourseKey,
				CertificateType: line.CertificateType,
			},
			Quantity: line.Quantity,
		})
	}

	params, err := h.service.CreateCheckout(r.Context(), basket)
	if err != nil {
		h.logger.Warn("Checkout rejected",
			zap.String("order_number", req.OrderNumber),
			zap.Error(err),
		)
		h.respondError(w, http.StatusBadRequest, "checkout rejected", err)
		return
	}

	h.respondJSON(w, http.StatusOK, checkoutResponse{
		PaymentPageURL: params.PaymentPageURL,
		Fields:         params.Fields,
	})
}
