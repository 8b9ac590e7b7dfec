package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edforge/coursepay/internal/domain"
)

// LedgerRepository implements ports.LedgerRepository on PostgreSQL.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// GetOrCreateSourceType returns the source type with the given name, creating
// it if absent. The no-op DO UPDATE makes the statement return the surviving
// row either way, so concurrent callers converge on one id.
func (r *LedgerRepository) GetOrCreateSourceType(ctx context.Context, name string) (*domain.SourceType, error) {
	query := `
		INSERT INTO payment_source_types (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`

	var sourceType domain.SourceType
	err := r.pool.QueryRow(ctx, query, uuid.New(), name).Scan(&sourceType.ID, &sourceType.Name)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeLedgerError, "get or create source type", err)
	}
	return &sourceType, nil
}

// GetOrCreatePaymentEventType returns the payment event type with the given
// name, creating it if absent.
func (r *LedgerRepository) GetOrCreatePaymentEventType(ctx context.Context, name string) (*domain.PaymentEventType, error) {
	query := `
		INSERT INTO payment_event_types (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`

	var eventType domain.PaymentEventType
	err := r.pool.QueryRow(ctx, query, uuid.New(), name).Scan(&eventType.ID, &eventType.Name)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeLedgerError, "get or create payment event type", err)
	}
	return &eventType, nil
}

// CreateFundingSource inserts a new funding source row and backfills the
// generated id and timestamps onto the given source.
func (r *LedgerRepository) CreateFundingSource(ctx context.Context, source *domain.FundingSource) error {
	amountAllocated, err := numericFromDecimal(source.AmountAllocated)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeLedgerError, "convert allocated amount", err)
	}
	amountDebited, err := numericFromDecimal(source.AmountDebited)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeLedgerError, "convert debited amount", err)
	}
	amountRefunded, err := numericFromDecimal(source.AmountRefunded)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeLedgerError, "convert refunded amount", err)
	}

	query := `
		INSERT INTO funding_sources (
			id, source_type_id, order_number, currency,
			amount_allocated, amount_debited, amount_refunded,
			reference, label, card_type
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err = r.pool.QueryRow(ctx, query,
		uuid.New(), source.SourceTypeID, source.OrderNumber, source.Currency,
		amountAllocated, amountDebited, amountRefunded,
		source.Reference, nullText(source.Label), nullText(source.CardType),
	).Scan(&source.ID, &source.CreatedAt, &source.UpdatedAt)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeLedgerError, "create funding source", err)
	}
	return nil
}

// UpdateFundingSource persists mutated amounts of an existing source.
func (r *LedgerRepository) UpdateFundingSource(ctx context.Context, source *domain.FundingSource) error {
	amountAllocated, err := numericFromDecimal(source.AmountAllocated)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeLedgerError, "convert allocated amount", err)
	}
	amountDebited, err := numericFromDecimal(source.AmountDebited)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeLedgerError, "convert debited amount", err)
	}
	amountRefunded, err := numericFromDecimal(source.AmountRefunded)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeLedgerError, "convert refunded amount", err)
	}

	query := `
		UPDATE funding_sources
		SET amount_allocated = $2,
			amount_debited = $3,
			amount_refunded = $4,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err = r.pool.QueryRow(ctx, query,
		source.ID, amountAllocated, amountDebited, amountRefunded,
	).Scan(&source.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewDomainError(domain.ErrorCodeSourceNotFound, "funding source not found").
				WithDetail("id", source.ID.String())
		}
		return domain.WrapError(domain.ErrorCodeLedgerError, "update funding source", err)
	}
	return nil
}

// GetFundingSourceByReference looks up a source by its gateway transaction
// reference.
func (r *LedgerRepository) GetFundingSourceByReference(ctx context.Context, reference string) (*domain.FundingSource, error) {
	query := `
		SELECT id, source_type_id, order_number, currency,
			amount_allocated, amount_debited, amount_refunded,
			reference, COALESCE(label, ''), COALESCE(card_type, ''),
			created_at, updated_at
		FROM funding_sources
		WHERE reference = $1`

	var source domain.FundingSource
	var allocated, debited, refunded pgtype.Numeric
	err := r.pool.QueryRow(ctx, query, reference).Scan(
		&source.ID, &source.SourceTypeID, &source.OrderNumber, &source.Currency,
		&allocated, &debited, &refunded,
		&source.Reference, &source.Label, &source.CardType,
		&source.CreatedAt, &source.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewDomainError(domain.ErrorCodeSourceNotFound, "funding source not found").
				WithDetail("reference", reference)
		}
		return nil, domain.WrapError(domain.ErrorCodeLedgerError, "get funding source by reference", err)
	}

	if source.AmountAllocated, err = decimalFromNumeric(allocated); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeLedgerError, "convert allocated amount", err)
	}
	if source.AmountDebited, err = decimalFromNumeric(debited); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeLedgerError, "convert debited amount", err)
	}
	if source.AmountRefunded, err = decimalFromNumeric(refunded); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeLedgerError, "convert refunded amount", err)
	}
	return &source, nil
}

// CreatePaymentEvent inserts a new payment event row.
func (r *LedgerRepository) CreatePaymentEvent(ctx context.Context, event *domain.PaymentEvent) error {
	amount, err := numericFromDecimal(event.Amount)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeLedgerError, "convert event amount", err)
	}

	query := `
		INSERT INTO payment_events (
			id, event_type_id, order_number, amount, reference, processor_name
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err = r.pool.QueryRow(ctx, query,
		uuid.New(), event.EventTypeID, event.OrderNumber, amount,
		event.Reference, event.ProcessorName,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return domain.WrapError(domain.ErrorCodeLedgerError, "create payment event", err)
	}
	return nil
}
