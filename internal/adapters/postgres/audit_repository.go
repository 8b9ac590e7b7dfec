package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edforge/coursepay/internal/domain"
)

// AuditRepository implements ports.AuditRepository on PostgreSQL, storing the
// serialized response as JSONB.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// RecordProcessorResponse persists a raw processor response and returns the
// id of the stored audit record.
func (r *AuditRepository) RecordProcessorResponse(ctx context.Context, response *domain.RawProcessorResponse) (uuid.UUID, error) {
	responseBytes := []byte("{}")
	if response.Response != nil {
		var err error
		responseBytes, err = json.Marshal(response.Response)
		if err != nil {
			return uuid.Nil, domain.WrapError(domain.ErrorCodeLedgerError, "marshal processor response", err)
		}
	}

	query := `
		INSERT INTO payment_processor_responses (
			id, processor_name, transaction_id, order_number, response
		)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		uuid.New(), response.ProcessorName, nullText(response.TransactionID),
		nullText(response.OrderNumber), responseBytes,
	).Scan(&response.ID, &response.CreatedAt)
	if err != nil {
		return uuid.Nil, domain.WrapError(domain.ErrorCodeLedgerError, "record processor response", err)
	}
	return response.ID, nil
}
