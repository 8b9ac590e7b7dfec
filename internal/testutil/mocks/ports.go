// Package mocks provides shared mock implementations of the domain ports
// for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/edforge/coursepay/internal/domain"
	"github.com/edforge/coursepay/internal/domain/ports"
)

// MockLedgerRepository mocks ports.LedgerRepository.
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) GetOrCreateSourceType(ctx context.Context, name string) (*domain.SourceType, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SourceType), args.Error(1)
}

func (m *MockLedgerRepository) GetOrCreatePaymentEventType(ctx context.Context, name string) (*domain.PaymentEventType, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentEventType), args.Error(1)
}

func (m *MockLedgerRepository) CreateFundingSource(ctx context.Context, source *domain.FundingSource) error {
	args := m.Called(ctx, source)
	return args.Error(0)
}

func (m *MockLedgerRepository) UpdateFundingSource(ctx context.Context, source *domain.FundingSource) error {
	args := m.Called(ctx, source)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetFundingSourceByReference(ctx context.Context, reference string) (*domain.FundingSource, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FundingSource), args.Error(1)
}

func (m *MockLedgerRepository) CreatePaymentEvent(ctx context.Context, event *domain.PaymentEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockAuditRepository mocks ports.AuditRepository.
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) RecordProcessorResponse(ctx context.Context, response *domain.RawProcessorResponse) (uuid.UUID, error) {
	args := m.Called(ctx, response)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockCreditGateway mocks ports.CreditGateway.
type MockCreditGateway struct {
	mock.Mock
}

func (m *MockCreditGateway) RunCredit(ctx context.Context, req ports.CreditRequest) (*ports.CreditResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.CreditResponse), args.Error(1)
}

// MockPaymentProcessor mocks ports.PaymentProcessor.
type MockPaymentProcessor struct {
	mock.Mock
}

func (m *MockPaymentProcessor) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPaymentProcessor) BuildTransactionParameters(ctx context.Context, basket *domain.Basket) (*domain.TransactionParameters, error) {
	args := m.Called(ctx, basket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionParameters), args.Error(1)
}

func (m *MockPaymentProcessor) HandleNotification(response map[string]string) (*domain.Settlement, error) {
	args := m.Called(response)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settlement), args.Error(1)
}

// MockCatalogRepository mocks ports.CatalogRepository.
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ProductClassBySlug(ctx context.Context, slug string) (*domain.ProductClass, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductClass), args.Error(1)
}
