package cybersource

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/edforge/coursepay/internal/domain"
	"github.com/edforge/coursepay/internal/domain/ports"
	"github.com/edforge/coursepay/pkg/timeutil"
)

// ProcessorName is the ledger name for this processor.
const ProcessorName = "cybersource"

// signedDateTimeFormat is the ISO-8601 layout CyberSource expects, with an
// explicit Z suffix.
const signedDateTimeFormat = "2006-01-02T15:04:05Z"

// Config contains the Secure Acceptance profile and SOAP credentials for a
// CyberSource merchant account.
type Config struct {
	// SOAPAPIURL is the endpoint of the transaction SOAP service (refunds).
	SOAPAPIURL string

	// MerchantID and TransactionKey authenticate SOAP calls.
	MerchantID     string
	TransactionKey string

	// ProfileID, AccessKey and SecretKey identify and sign Secure
	// Acceptance hosted-page transactions.
	ProfileID string
	AccessKey string
	SecretKey string

	// PaymentPageURL is the gateway's hosted payment page.
	PaymentPageURL string

	// ReceiptPageURL and CancelPageURL are the storefront pages the
	// customer is returned to.
	ReceiptPageURL string
	CancelPageURL  string

	// LanguageCode is the locale sent with each transaction.
	LanguageCode string
}

// validate reports the first missing required setting. Missing settings are
// a fatal configuration error at construction time, never at build time.
func (c *Config) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"soap_api_url", c.SOAPAPIURL},
		{"merchant_id", c.MerchantID},
		{"transaction_key", c.TransactionKey},
		{"profile_id", c.ProfileID},
		{"access_key", c.AccessKey},
		{"secret_key", c.SecretKey},
		{"payment_page_url", c.PaymentPageURL},
		{"receipt_page_url", c.ReceiptPageURL},
		{"cancel_page_url", c.CancelPageURL},
		{"language_code", c.LanguageCode},
	}
	for _, setting := range required {
		if setting.value == "" {
			return domain.NewDomainError(domain.ErrorCodeConfigMissing,
				fmt.Sprintf("cybersource processor setting %q is not configured", setting.name))
		}
	}
	return nil
}

// Processor implements the CyberSource Secure Acceptance Web/Mobile flow:
// signed hosted-page transaction parameters outbound, signed merchant
// notifications inbound.
type Processor struct {
	config  Config
	catalog ports.CatalogRepository
	clock   timeutil.Clock
	logger  *zap.Logger
}

// NewProcessor constructs the processor, validating that every required
// setting is present.
func NewProcessor(config Config, catalog ports.CatalogRepository, clock timeutil.Clock, logger *zap.Logger) (*Processor, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = timeutil.SystemClock{}
	}
	return &Processor{
		config:  config,
		catalog: catalog,
		clock:   clock,
		logger:  logger,
	}, nil
}

// Name returns the processor's ledger name.
func (p *Processor) Name() string {
	return ProcessorName
}

// BuildTransactionParameters generates the signed parameters CyberSource
// requires to complete a transaction. The returned parameters are immutable
// once signed; payment_page_url rides along as unsigned metadata.
func (p *Processor) BuildTransactionParameters(ctx context.Context, basket *domain.Basket) (*domain.TransactionParameters, error) {
	if err := validateBasket(basket); err != nil {
		return nil, err
	}

	transactionUUID := uuid.New()
	fields := map[string]string{
		"access_key":           p.config.AccessKey,
		"profile_id":           p.config.ProfileID,
		"transaction_uuid":     hex.EncodeToString(transactionUUID[:]),
		"signed_field_names":   "",
		"unsigned_field_names": "",
		"signed_date_time":     p.clock.Now().UTC().Format(signedDateTimeFormat),
		"locale":               p.config.LanguageCode,
		"transaction_type":     "sale",
		"reference_number":     basket.OrderNumber,
		"amount":               basket.TotalInclTax.StringFixed(2),
		"currency":             basket.Currency,
		"consumer_id":          basket.Owner,
		"override_custom_receipt_page": fmt.Sprintf("%s?orderNum=%s",
			p.config.ReceiptPageURL, basket.OrderNumber),
		"override_custom_cancel_page": p.config.CancelPageURL,
	}

	if seat := p.singleSeat(ctx, basket); seat != nil {
		fields["merchant_defined_data1"] = seat.CourseKey
		fields["merchant_defined_data2"] = seat.CertificateType
	}

	// The signed field set covers every field present at this point, sorted.
	// signed_field_names itself participates, so it is set before signing.
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	fields[fieldSignedFieldNames] = strings.Join(names, ",")
	fields[fieldSignature] = signFields(fields, p.config.SecretKey)

	p.logger.Info("Built transaction parameters",
		zap.String("reference_number", basket.OrderNumber),
		zap.String("transaction_uuid", fields["transaction_uuid"]),
		zap.String("amount", fields["amount"]),
		zap.String("currency", fields["currency"]),
	)

	return &domain.TransactionParameters{
		Fields:         fields,
		PaymentPageURL: p.config.PaymentPageURL,
	}, nil
}

func validateBasket(basket *domain.Basket) error {
	if basket == nil {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "basket is required")
	}
	if len(basket.Lines) == 0 {
		return domain.NewDomainError(domain.ErrorCodeValidationFailed, "basket has no lines").
			WithDetail("order_number", basket.OrderNumber)
	}
	if basket.OrderNumber == "" {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "basket has no order number")
	}
	if basket.Currency == "" {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "basket has no currency").
			WithDetail("order_number", basket.OrderNumber)
	}
	if basket.Owner == "" {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "basket has no owner").
			WithDetail("order_number", basket.OrderNumber)
	}
	return nil
}

// singleSeat returns the first product in the basket with the "seat" product
// class, or nil if there is none. A catalog without the seat class registered
// is not an error; enrichment is skipped silently.
func (p *Processor) singleSeat(ctx context.Context, basket *domain.Basket) *domain.Product {
	seatClass, err := p.catalog.ProductClassBySlug(ctx, domain.SeatProductClassSlug)
	if err != nil {
		p.logger.Warn("Seat product class lookup failed, skipping enrichment",
			zap.String("order_number", basket.OrderNumber),
			zap.Error(err),
		)
		return nil
	}
	if seatClass == nil {
		return nil
	}

	for i := range basket.Lines {
		if basket.Lines[i].Product.ClassSlug == seatClass.Slug {
			return &basket.Lines[i].Product
		}
	}
	return nil
}

// HandleNotification handles a merchant notification from CyberSource. The
// signature is verified before any trust is placed in field contents; the
// decision is then mapped to a typed outcome, and ACCEPT is additionally
// guarded against partial authorization. On full success the normalized
// settlement fields are returned for ledger recording.
func (p *Processor) HandleNotification(response map[string]string) (*domain.Settlement, error) {
	if len(response) == 0 || !verifySignature(response, p.config.SecretKey) {
		return nil, domain.NewDomainError(domain.ErrorCodeSignatureInvalid,
			"notification signature is invalid")
	}

	decision := domain.ParseDecision(response["decision"])
	if decision != domain.DecisionAccept {
		return nil, decisionError(decision, response["decision"])
	}

	// Partial authorization is disabled on a correctly configured account;
	// reaching this branch is an invariant violation, not a recoverable path.
	if response["auth_amount"] != response["req_amount"] {
		return nil, domain.NewDomainError(domain.ErrorCodePartialAuthorization,
			"authorized amount differs from requested amount").
			WithDetail("auth_amount", response["auth_amount"]).
			WithDetail("req_amount", response["req_amount"])
	}

	total, err := decimal.NewFromString(response["req_amount"])
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeValidationFailed,
			"notification req_amount is not a decimal", err)
	}

	return &domain.Settlement{
		Currency:      response["req_currency"],
		Total:         total,
		TransactionID: response["transaction_id"],
		CardLabel:     response["req_card_number"],
		CardType:      CardTypeSlug(response["req_card_type"]),
	}, nil
}

func decisionError(decision domain.Decision, raw string) *domain.DomainError {
	var err *domain.DomainError
	switch decision {
	case domain.DecisionCancel:
		err = domain.NewDomainError(domain.ErrorCodeDecisionCancelled, "payment cancelled by user")
	case domain.DecisionDecline:
		err = domain.NewDomainError(domain.ErrorCodeDecisionDeclined, "transaction declined by processor")
	case domain.DecisionError:
		err = domain.NewDomainError(domain.ErrorCodeDecisionError, "processor reported a gateway error")
	default:
		err = domain.NewDomainError(domain.ErrorCodeDecisionUnknown, "unknown processor decision")
	}
	return err.WithDetail("decision", raw)
}
