package mocks

import (
	"context"

	"vfw-service/internal/domain"
	"vfw-service/internal/infra"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(order *domain.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(order *domain.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(id uint64) (*domain.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(number string) (*domain.Order, error) {
	args := m.Called(number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUserId(userID uint64) ([]domain.Order, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

type MockInquiryRepository struct {
	mock.Mock
}

func (m *MockInquiryRepository) Save(inquiry *domain.Inquiry) error {
	args := m.Called(inquiry)
	return args.Error(0)
}

func (m *MockInquiryRepository) Update(inquiry *domain.Inquiry) error {
	args := m.Called(inquiry)
	return args.Error(0)
}

func (m *MockInquiryRepository) FindByID(id uint64) (*domain.Inquiry, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inquiry), args.Error(1)
}

func (m *MockInquiryRepository) FindByUserId(userID uint64) ([]domain.Inquiry, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Inquiry), args.Error(1)
}

func (m *MockInquiryRepository) FindByStatus(status domain.InquiryStatus) ([]domain.Inquiry, error) {
	args := m.Called(status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Inquiry), args.Error(1)
}

func (m *MockInquiryRepository) Delete(id uint64) error {
	args := m.Called(id)
	return args.Error(0)
}

type MockWarrantyRepository struct {
	mock.Mock
}

func (m *MockWarrantyRepository) Save(warranty *domain.Warranty) error {
	args := m.Called(warranty)
	return args.Error(0)
}

func (m *MockWarrantyRepository) Update(warranty *domain.Warranty) error {
	args := m.Called(warranty)
	return args.Error(0)
}

func (m *MockWarrantyRepository) FindByID(id uint64) (*domain.Warranty, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Warranty), args.Error(1)
}

func (m *MockWarrantyRepository) FindBySerial(serialNumber string) (*domain.Warranty, error) {
	args := m.Called(serialNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Warranty), args.Error(1)
}

func (m *MockWarrantyRepository) FindByUserId(userID uint64) ([]domain.Warranty, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Warranty), args.Error(1)
}

type MockCatalogClient struct {
	mock.Mock
}

func (m *MockCatalogClient) GetProductById(ctx context.Context, productID uint64) (*infra.ProductInfo, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.ProductInfo), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendEmail(to, subject, html string) error {
	args := m.Called(to, subject, html)
	return args.Error(0)
}
