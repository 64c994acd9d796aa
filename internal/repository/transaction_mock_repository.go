package repository

import (
	"context"

	"ajebo-payments/internal/entity"

	"github.com/stretchr/testify/mock"
)

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Upsert(ctx context.Context, txn *entity.PaymentTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, reference string, status entity.PaymentStatus, gatewayReference string) error {
	args := m.Called(ctx, reference, status, gatewayReference)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindByReference(ctx context.Context, reference string) (*entity.PaymentTransaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) != nil {
		return args.Get(0).(*entity.PaymentTransaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionRepository) List(ctx context.Context, limit int, status entity.PaymentStatus) ([]*entity.PaymentTransaction, error) {
	args := m.Called(ctx, limit, status)
	if args.Get(0) != nil {
		return args.Get(0).([]*entity.PaymentTransaction), args.Error(1)
	}
	return nil, args.Error(1)
}
