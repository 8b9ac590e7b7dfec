package ports

import (
	"context"

	"github.com/edforge/coursepay/internal/domain"
)

// PaymentProcessor is the gateway-facing half of the payment core: it builds
// signed initiation payloads and validates inbound merchant notifications.
type PaymentProcessor interface {
	// Name is the processor's ledger name (e.g. "cybersource").
	Name() string

	// BuildTransactionParameters assembles the signed outbound payload for
	// one purchase attempt from a basket snapshot.
	BuildTransactionParameters(ctx context.Context, basket *domain.Basket) (*domain.TransactionParameters, error)

	// HandleNotification validates an inbound gateway notification and, on a
	// full ACCEPT, returns the normalized settlement fields. Non-success
	// outcomes are returned as decision-specific domain errors; the caller
	// is responsible for presenting and logging them, and nothing is
	// retried here.
	HandleNotification(response map[string]string) (*domain.Settlement, error)
}
