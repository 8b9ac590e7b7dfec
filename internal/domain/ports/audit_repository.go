package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/edforge/coursepay/internal/domain"
)

// AuditRepository is the append-only sink for raw processor exchanges.
// Every request/response exchanged with the processor, refund calls
// included, is recorded here regardless of outcome.
type AuditRepository interface {
	// RecordProcessorResponse persists a raw processor response and returns
	// the id of the stored audit record.
	RecordProcessorResponse(ctx context.Context, response *domain.RawProcessorResponse) (uuid.UUID, error)
}
