package cybersource

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edforge/coursepay/internal/domain"
	"github.com/edforge/coursepay/internal/testutil/mocks"
	"github.com/edforge/coursepay/pkg/timeutil"
)

const testSecretKey = "cs-test-secret"

func testConfig() Config {
	return Config{
		SOAPAPIURL:     "https://ics2wstest.ic3.com/commerce/1.x/transactionProcessor",
		MerchantID:     "edforge",
		TransactionKey: "soap-transaction-key",
		ProfileID:      "profile-1",
		AccessKey:      "access-1",
		SecretKey:      testSecretKey,
		PaymentPageURL: "https://testsecureacceptance.cybersource.com/pay",
		ReceiptPageURL: "https://shop.example.com/receipt",
		CancelPageURL:  "https://shop.example.com/cancel",
		LanguageCode:   "en",
	}
}

func seatCatalog() *mocks.MockCatalogRepository {
	catalog := &mocks.MockCatalogRepository{}
	catalog.On("ProductClassBySlug", mock.Anything, domain.SeatProductClassSlug).
		Return(&domain.ProductClass{Slug: "seat", Name: "Seat"}, nil)
	return catalog
}

func emptyCatalog() *mocks.MockCatalogRepository {
	catalog := &mocks.MockCatalogRepository{}
	catalog.On("ProductClassBySlug", mock.Anything, domain.SeatProductClassSlug).
		Return(nil, nil)
	return catalog
}

func newTestProcessor(t *testing.T, catalog *mocks.MockCatalogRepository) *Processor {
	t.Helper()
	clock := timeutil.FixedClock{T: time.Date(2015, 2, 1, 10, 30, 0, 0, time.UTC)}
	processor, err := NewProcessor(testConfig(), catalog, clock, zap.NewNop())
	require.NoError(t, err)
	return processor
}

func seatBasket() *domain.Basket {
	return &domain.Basket{
		OrderNumber:  "OSCR-100022",
		Owner:        "verified-learner",
		Currency:     "USD",
		TotalInclTax: decimal.RequireFromString("99.00"),
		Lines: []domain.BasketLine{
			{
				Product: domain.Product{
					SKU:             "SEAT-DEMOX",
					Title:           "Seat in edX Demo Course",
					ClassSlug:       "seat",
					CourseKey:       "edX/DemoX/Demo_Course",
					CertificateType: "verified",
				},
				Quantity: 1,
			},
		},
	}
}

func TestNewProcessorMissingSetting(t *testing.T) {
	config := testConfig()
	config.SecretKey = ""

	_, err := NewProcessor(config, emptyCatalog(), nil, zap.NewNop())
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeConfigMissing))
	assert.Contains(t, err.Error(), "secret_key")
}

func TestBuildTransactionParameters(t *testing.T) {
	processor := newTestProcessor(t, seatCatalog())

	params, err := processor.BuildTransactionParameters(context.Background(), seatBasket())
	require.NoError(t, err)

	fields := params.Fields
	assert.Equal(t, "access-1", fields["access_key"])
	assert.Equal(t, "profile-1", fields["profile_id"])
	assert.Equal(t, "sale", fields["transaction_type"])
	assert.Equal(t, "OSCR-100022", fields["reference_number"])
	assert.Equal(t, "99.00", fields["amount"])
	assert.Equal(t, "USD", fields["currency"])
	assert.Equal(t, "verified-learner", fields["consumer_id"])
	assert.Equal(t, "en", fields["locale"])
	assert.Equal(t, "", fields["unsigned_field_names"])
	assert.Equal(t, "2015-02-01T10:30:00Z", fields["signed_date_time"])
	assert.Equal(t, "https://shop.example.com/receipt?orderNum=OSCR-100022",
		fields["override_custom_receipt_page"])
	assert.Equal(t, "https://shop.example.com/cancel", fields["override_custom_cancel_page"])
	assert.Len(t, fields["transaction_uuid"], 32)

	// The hosted page URL rides along unsigned and outside the field set.
	assert.Equal(t, "https://testsecureacceptance.cybersource.com/pay", params.PaymentPageURL)
	assert.NotContains(t, fields, "payment_page_url")

	// signed_field_names is the sorted list of every field present at
	// signing time, and the signature verifies against it.
	names := strings.Split(fields["signed_field_names"], ",")
	assert.True(t, sort.StringsAreSorted(names))
	for _, name := range names {
		assert.Contains(t, fields, name)
	}
	assert.NotContains(t, names, "signature")
	assert.True(t, verifySignature(fields, testSecretKey))
}

func TestBuildTransactionParametersFreshUUIDPerAttempt(t *testing.T) {
	processor := newTestProcessor(t, seatCatalog())

	first, err := processor.BuildTransactionParameters(context.Background(), seatBasket())
	require.NoError(t, err)
	second, err := processor.BuildTransactionParameters(context.Background(), seatBasket())
	require.NoError(t, err)

	assert.NotEqual(t, first.Fields["transaction_uuid"], second.Fields["transaction_uuid"])
}

func TestBuildTransactionParametersSeatEnrichment(t *testing.T) {
	processor := newTestProcessor(t, seatCatalog())

	params, err := processor.BuildTransactionParameters(context.Background(), seatBasket())
	require.NoError(t, err)

	assert.Equal(t, "edX/DemoX/Demo_Course", params.Fields["merchant_defined_data1"])
	assert.Equal(t, "verified", params.Fields["merchant_defined_data2"])
}

func TestBuildTransactionParametersNoSeatClassRegistered(t *testing.T) {
	// Catalogs without the seat product class occur in minimal
	// configurations; enrichment is skipped without error.
	processor := newTestProcessor(t, emptyCatalog())

	params, err := processor.BuildTransactionParameters(context.Background(), seatBasket())
	require.NoError(t, err)

	assert.NotContains(t, params.Fields, "merchant_defined_data1")
	assert.NotContains(t, params.Fields, "merchant_defined_data2")
	assert.True(t, verifySignature(params.Fields, testSecretKey))
}

func TestBuildTransactionParametersCertificateTypeMayBeEmpty(t *testing.T) {
	processor := newTestProcessor(t, seatCatalog())
	basket := seatBasket()
	basket.Lines[0].Product.CertificateType = ""

	params, err := processor.BuildTransactionParameters(context.Background(), basket)
	require.NoError(t, err)

	assert.Equal(t, "edX/DemoX/Demo_Course", params.Fields["merchant_defined_data1"])
	assert.Equal(t, "", params.Fields["merchant_defined_data2"])
}

func TestBuildTransactionParametersValidation(t *testing.T) {
	processor := newTestProcessor(t, emptyCatalog())

	tests := []struct {
		name   string
		mutate func(b *domain.Basket)
	}{
		{"no lines", func(b *domain.Basket) { b.Lines = nil }},
		{"no order number", func(b *domain.Basket) { b.OrderNumber = "" }},
		{"no currency", func(b *domain.Basket) { b.Currency = "" }},
		{"no owner", func(b *domain.Basket) { b.Owner = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			basket := seatBasket()
			tt.mutate(basket)

			_, err := processor.BuildTransactionParameters(context.Background(), basket)
			assert.Error(t, err)
		})
	}
}

// acceptedNotification turns built parameters into the synthetic gateway
// notification the processor would receive after a successful payment.
func acceptedNotification(t *testing.T, processor *Processor) map[string]string {
	t.Helper()

	params, err := processor.BuildTransactionParameters(context.Background(), seatBasket())
	require.NoError(t, err)

	response := make(map[string]string, len(params.Fields)+7)
	for key, value := range params.Fields {
		response[key] = value
	}
	response["decision"] = "ACCEPT"
	response["auth_amount"] = response["amount"]
	response["req_amount"] = response["amount"]
	response["req_currency"] = response["currency"]
	response["transaction_id"] = "6314566786306131104141"
	response["req_card_number"] = "xxxxxxxxxxxx1111"
	response["req_card_type"] = "001"
	resignResponse(response)
	return response
}

// resignResponse recomputes signed_field_names and signature the way the
// gateway does, covering every field present.
func resignResponse(response map[string]string) {
	delete(response, "signature")
	names := make([]string, 0, len(response))
	for name := range response {
		if name == "signed_field_names" {
			continue
		}
		names = append(names, name)
	}
	names = append(names, "signed_field_names")
	sort.Strings(names)
	response["signed_field_names"] = strings.Join(names, ",")
	response["signature"] = signFields(response, testSecretKey)
}

func TestHandleNotificationRoundTrip(t *testing.T) {
	processor := newTestProcessor(t, seatCatalog())
	response := acceptedNotification(t, processor)

	settlement, err := processor.HandleNotification(response)
	require.NoError(t, err)

	assert.Equal(t, "USD", settlement.Currency)
	assert.True(t, decimal.RequireFromString("99.00").Equal(settlement.Total))
	assert.Equal(t, "6314566786306131104141", settlement.TransactionID)
	assert.Equal(t, "xxxxxxxxxxxx1111", settlement.CardLabel)
	assert.Equal(t, "visa", settlement.CardType)
}

func TestHandleNotificationTamperedFields(t *testing.T) {
	processor := newTestProcessor(t, seatCatalog())
	baseline := acceptedNotification(t, processor)

	for _, field := range strings.Split(baseline["signed_field_names"], ",") {
		if field == "signed_field_names" {
			continue
		}
		t.Run(field, func(t *testing.T) {
			response := make(map[string]string, len(baseline))
			for key, value := range baseline {
				response[key] = value
			}
			response[field] = response[field] + "x"

			_, err := processor.HandleNotification(response)
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrorCodeSignatureInvalid))
		})
	}
}

func TestHandleNotificationEmptyResponse(t *testing.T) {
	processor := newTestProcessor(t, seatCatalog())

	_, err := processor.HandleNotification(nil)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeSignatureInvalid))
}

func TestHandleNotificationDecisionMapping(t *testing.T) {
	processor := newTestProcessor(t, seatCatalog())

	tests := []struct {
		decision string
		wantCode domain.ErrorCode
	}{
		{"CANCEL", domain.ErrorCodeDecisionCancelled},
		{"cancel", domain.ErrorCodeDecisionCancelled},
		{"DECLINE", domain.ErrorCodeDecisionDeclined},
		{"ERROR", domain.ErrorCodeDecisionError},
		{"REVIEW", domain.ErrorCodeDecisionUnknown},
		{"", domain.ErrorCodeDecisionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.decision, func(t *testing.T) {
			response := acceptedNotification(t, processor)
			response["decision"] = tt.decision
			resignResponse(response)

			_, err := processor.HandleNotification(response)
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, tt.wantCode),
				"want %s, got %s", tt.wantCode, domain.GetErrorCode(err))
			assert.True(t, domain.IsDecisionError(err))
		})
	}
}

func TestHandleNotificationPartialAuthorization(t *testing.T) {
	processor := newTestProcessor(t, seatCatalog())
	response := acceptedNotification(t, processor)
	response["auth_amount"] = "50.00"
	response["req_amount"] = "100.00"
	resignResponse(response)

	settlement, err := processor.HandleNotification(response)
	require.Error(t, err)
	assert.Nil(t, settlement)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodePartialAuthorization))
}

func TestHandleNotificationUnknownCardType(t *testing.T) {
	processor := newTestProcessor(t, seatCatalog())
	response := acceptedNotification(t, processor)
	response["req_card_type"] = "042"
	resignResponse(response)

	settlement, err := processor.HandleNotification(response)
	require.NoError(t, err)
	assert.Equal(t, "", settlement.CardType)
}
