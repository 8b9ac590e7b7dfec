package ports

import (
	"context"

	"github.com/edforge/coursepay/internal/domain"
)

// LedgerRepository persists the ledger-side effects of settlements and
// refunds. The get-or-create operations must be safe under concurrent
// access: the backing store enforces a unique constraint on the type name
// and implementations upsert against it, so concurrent calls never create
// duplicate type rows.
type LedgerRepository interface {
	// GetOrCreateSourceType returns the source type with the given name,
	// creating it if absent.
	GetOrCreateSourceType(ctx context.Context, name string) (*domain.SourceType, error)

	// GetOrCreatePaymentEventType returns the payment event type with the
	// given name, creating it if absent.
	GetOrCreatePaymentEventType(ctx context.Context, name string) (*domain.PaymentEventType, error)

	// CreateFundingSource inserts a new funding source row.
	CreateFundingSource(ctx context.Context, source *domain.FundingSource) error

	// UpdateFundingSource persists mutated amounts of an existing source.
	UpdateFundingSource(ctx context.Context, source *domain.FundingSource) error

	// GetFundingSourceByReference looks up a source by its gateway
	// transaction reference. Returns ErrorCodeSourceNotFound if absent.
	GetFundingSourceByReference(ctx context.Context, reference string) (*domain.FundingSource, error)

	// CreatePaymentEvent inserts a new payment event row.
	CreatePaymentEvent(ctx context.Context, event *domain.PaymentEvent) error
}
