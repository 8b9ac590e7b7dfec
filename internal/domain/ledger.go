package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment event type names. Rows in the backing store are keyed by name with
// a unique constraint, so concurrent get-or-create calls converge on one row.
const (
	PaymentEventPaid     = "Paid"
	PaymentEventRefunded = "Refunded"
)

// SourceType identifies a payment processor in the ledger (e.g. "cybersource").
type SourceType struct {
	ID   uuid.UUID
	Name string
}

// PaymentEventType identifies a kind of monetary event (Paid, Refunded).
type PaymentEventType struct {
	ID   uuid.UUID
	Name string
}

// FundingSource represents money held or debited against an order through a
// given processor. Reference is the gateway's own transaction id and is the
// handle used later for refunds; it is a foreign lookup key into the
// gateway's transaction history, not a reference this system controls.
type FundingSource struct {
	ID              uuid.UUID
	SourceTypeID    uuid.UUID
	OrderNumber     string
	Currency        string
	AmountAllocated decimal.Decimal
	AmountDebited   decimal.Decimal
	AmountRefunded  decimal.Decimal
	Reference       string
	Label           string
	CardType        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Refund mutates the source to reflect a credit of amount: the allocated and
// debited amounts are reduced and the refunded total is increased. The amount
// must be positive and must not exceed what was debited.
func (s *FundingSource) Refund(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewDomainError(ErrorCodeValidationFailed, "refund amount must be positive").
			WithDetail("amount", amount.String())
	}
	if amount.GreaterThan(s.AmountDebited) {
		return NewDomainError(ErrorCodeValidationFailed, "refund amount exceeds debited amount").
			WithDetail("amount", amount.String()).
			WithDetail("amount_debited", s.AmountDebited.String())
	}

	s.AmountAllocated = s.AmountAllocated.Sub(amount)
	s.AmountDebited = s.AmountDebited.Sub(amount)
	s.AmountRefunded = s.AmountRefunded.Add(amount)
	return nil
}

// PaymentEvent is an immutable audit record of a monetary event. One is
// created per settlement and per successful refund; rows are never updated.
type PaymentEvent struct {
	ID            uuid.UUID
	EventTypeID   uuid.UUID
	OrderNumber   string
	Amount        decimal.Decimal
	Reference     string
	ProcessorName string
	CreatedAt     time.Time
}

// RawProcessorResponse is an opaque, fully-serialized copy of a request or
// response exchanged with the processor, stored for audit regardless of
// outcome. Append-only: never mutated after creation.
type RawProcessorResponse struct {
	ID            uuid.UUID
	ProcessorName string
	TransactionID string
	OrderNumber   string
	Response      map[string]interface{}
	CreatedAt     time.Time
}
