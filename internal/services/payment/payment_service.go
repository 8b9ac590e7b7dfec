// Package payment orchestrates the payment core: checkout initiation,
// notification settlement and refunds, tying the processor adapter to the
// ledger and audit stores.
package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/edforge/coursepay/internal/domain"
	"github.com/edforge/coursepay/internal/domain/ports"
	"github.com/edforge/coursepay/pkg/observability"
)

// Service implements the payment workflows on top of the domain ports.
type Service struct {
	processor ports.PaymentProcessor
	ledger    ports.LedgerRepository
	audit     ports.AuditRepository
	gateway   ports.CreditGateway
	logger    *zap.Logger
}

// NewService creates a new payment service
func NewService(
	processor ports.PaymentProcessor,
	ledger ports.LedgerRepository,
	audit ports.AuditRepository,
	gateway ports.CreditGateway,
	logger *zap.Logger,
) *Service {
	return &Service{
		processor: processor,
		ledger:    ledger,
		audit:     audit,
		gateway:   gateway,
		logger:    logger,
	}
}

// CreateCheckout builds the signed transaction parameters for a basket.
func (s *Service) CreateCheckout(ctx context.Context, basket *domain.Basket) (*domain.TransactionParameters, error) {
	return s.processor.BuildTransactionParameters(ctx, basket)
}

// HandleNotification processes an inbound gateway notification. The raw
// notification is recorded for audit before any validation, so rejected and
// tampered notifications leave a trace too. On a validated ACCEPT the
// settlement is recorded in the ledger.
func (s *Service) HandleNotification(ctx context.Context, response map[string]string) (*domain.Settlement, error) {
	orderNumber := orderNumberFromNotification(response)

	auditID := s.recordAudit(ctx, response["transaction_id"], orderNumber, notificationTree(response))

	settlement, err := s.processor.HandleNotification(response)
	observability.RecordNotificationDecision(s.processor.Name(), decisionLabel(response, err))
	if err != nil {
		s.logger.Warn("Notification rejected",
			zap.String("order_number", orderNumber),
			zap.String("audit_id", auditID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.RecordSettlement(ctx, orderNumber, settlement); err != nil {
		return nil, err
	}
	return settlement, nil
}

// RecordSettlement writes the ledger side of a validated settlement: a
// funding source holding the captured amount and a Paid payment event.
func (s *Service) RecordSettlement(ctx context.Context, orderNumber string, settlement *domain.Settlement) error {
	sourceType, err := s.ledger.GetOrCreateSourceType(ctx, s.processor.Name())
	if err != nil {
		return err
	}
	eventType, err := s.ledger.GetOrCreatePaymentEventType(ctx, domain.PaymentEventPaid)
	if err != nil {
		return err
	}

	source := &domain.FundingSource{
		SourceTypeID:    sourceType.ID,
		OrderNumber:     orderNumber,
		Currency:        settlement.Currency,
		AmountAllocated: settlement.Total,
		AmountDebited:   settlement.Total,
		AmountRefunded:  decimal.Zero,
		Reference:       settlement.TransactionID,
		Label:           settlement.CardLabel,
		CardType:        settlement.CardType,
	}
	if err := s.ledger.CreateFundingSource(ctx, source); err != nil {
		return err
	}

	event := &domain.PaymentEvent{
		EventTypeID:   eventType.ID,
		OrderNumber:   orderNumber,
		Amount:        settlement.Total,
		Reference:     settlement.TransactionID,
		ProcessorName: s.processor.Name(),
	}
	if err := s.ledger.CreatePaymentEvent(ctx, event); err != nil {
		return err
	}

	s.logger.Info("Settlement recorded",
		zap.String("order_number", orderNumber),
		zap.String("reference", settlement.TransactionID),
		zap.String("amount", settlement.Total.String()),
		zap.String("currency", settlement.Currency),
	)
	return nil
}

// IssueCredit refunds amount against the funding source identified by the
// gateway transaction reference. The gateway exchange is recorded for audit
// whatever the verdict; the ledger is only touched on ACCEPT.
//
// The credit call is not idempotent, so callers must serialize refund
// attempts per funding source.
func (s *Service) IssueCredit(ctx context.Context, reference string, amount decimal.Decimal) (string, error) {
	source, err := s.ledger.GetFundingSourceByReference(ctx, reference)
	if err != nil {
		return "", err
	}

	// Validate against the ledger before any money moves: a credit the
	// ledger cannot record must never reach the gateway.
	if !amount.IsPositive() {
		return "", domain.NewDomainError(domain.ErrorCodeValidationFailed, "refund amount must be positive").
			WithDetail("amount", amount.String())
	}
	if amount.GreaterThan(source.AmountDebited) {
		return "", domain.NewDomainError(domain.ErrorCodeValidationFailed, "refund amount exceeds debited amount").
			WithDetail("amount", amount.String()).
			WithDetail("amount_debited", source.AmountDebited.String())
	}

	resp, err := s.gateway.RunCredit(ctx, ports.CreditRequest{
		MerchantReferenceCode: source.OrderNumber,
		OrderRequestToken:     source.Reference,
		CaptureRequestID:      source.Reference,
		Currency:              source.Currency,
		Amount:                amount.StringFixed(2),
	})
	if err != nil {
		observability.RecordRefund(s.processor.Name(), "failed")
		return "", domain.WrapError(domain.ErrorCodeGatewayError,
			fmt.Sprintf("credit call for order %s failed before a response was received", source.OrderNumber), err)
	}

	auditID := s.recordAudit(ctx, resp.RequestID, source.OrderNumber, resp.Raw)

	if resp.Decision != "ACCEPT" {
		observability.RecordRefund(s.processor.Name(), "rejected")
		return "", domain.NewDomainError(domain.ErrorCodeGatewayError,
			fmt.Sprintf("credit for order %s was not accepted; gateway response recorded as %s",
				source.OrderNumber, auditID)).
			WithDetail("decision", resp.Decision).
			WithDetail("reason_code", resp.ReasonCode)
	}

	if err := source.Refund(amount); err != nil {
		return "", err
	}
	if err := s.ledger.UpdateFundingSource(ctx, source); err != nil {
		return "", err
	}

	eventType, err := s.ledger.GetOrCreatePaymentEventType(ctx, domain.PaymentEventRefunded)
	if err != nil {
		return "", err
	}
	event := &domain.PaymentEvent{
		EventTypeID:   eventType.ID,
		OrderNumber:   source.OrderNumber,
		Amount:        amount,
		Reference:     resp.RequestID,
		ProcessorName: s.processor.Name(),
	}
	if err := s.ledger.CreatePaymentEvent(ctx, event); err != nil {
		return "", err
	}

	observability.RecordRefund(s.processor.Name(), "accepted")
	s.logger.Info("Credit issued",
		zap.String("order_number", source.OrderNumber),
		zap.String("request_id", resp.RequestID),
		zap.String("amount", amount.String()),
	)
	return resp.RequestID, nil
}

// recordAudit stores a raw processor exchange, logging instead of failing
// when the audit store is unavailable. Audit is best effort; it never blocks
// the payment path.
func (s *Service) recordAudit(ctx context.Context, transactionID, orderNumber string, tree map[string]interface{}) uuid.UUID {
	auditID, err := s.audit.RecordProcessorResponse(ctx, &domain.RawProcessorResponse{
		ProcessorName: s.processor.Name(),
		TransactionID: transactionID,
		OrderNumber:   orderNumber,
		Response:      tree,
	})
	if err != nil {
		s.logger.Error("Failed to record processor response",
			zap.String("order_number", orderNumber),
			zap.String("transaction_id", transactionID),
			zap.Error(err),
		)
		return uuid.Nil
	}
	return auditID
}

// decisionLabel picks the metric label for a processed notification: the
// parsed decision on success, the error code otherwise.
func decisionLabel(response map[string]string, err error) string {
	if err == nil {
		return string(domain.DecisionAccept)
	}
	if code := domain.GetErrorCode(err); code != "" {
		return string(code)
	}
	return string(domain.ParseDecision(response["decision"]))
}

// orderNumberFromNotification extracts the order number from a gateway
// notification. The gateway echoes request fields with a req_ prefix; the
// unprefixed name is accepted as a fallback.
func orderNumberFromNotification(response map[string]string) string {
	if number := response["req_reference_number"]; number != "" {
		return number
	}
	return response["reference_number"]
}

func notificationTree(response map[string]string) map[string]interface{} {
	tree := make(map[string]interface{}, len(response))
	for key, value := range response {
		tree[key] = value
	}
	return tree
}
