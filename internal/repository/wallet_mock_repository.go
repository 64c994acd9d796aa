package repository

import (
	"context"

	"ajebo-payments/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) BeginTx(ctx context.Context) *gorm.DB {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).(*gorm.DB)
	}
	return nil
}

func (m *MockWalletRepository) Create(ctx context.Context, tx *gorm.DB, wallet *entity.Wallet) error {
	args := m.Called(ctx, tx, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID string) (*entity.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*entity.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWalletRepository) GetByUserIDForUpdate(ctx context.Context, tx *gorm.DB, userID string) (*entity.Wallet, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) != nil {
		return args.Get(0).(*entity.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWalletRepository) UpdateBalance(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, newBalance int64, version int) error {
	args := m.Called(ctx, tx, walletID, newBalance, version)
	return args.Error(0)
}

func (m *MockWalletRepository) UpdateProfile(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, email, name string) error {
	args := m.Called(ctx, tx, walletID, email, name)
	return args.Error(0)
}

func (m *MockWalletRepository) Search(ctx context.Context, query string) ([]*entity.Wallet, error) {
	args := m.Called(ctx, query)
	if args.Get(0) != nil {
		return args.Get(0).([]*entity.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWalletRepository) CreateLedgerEntry(ctx context.Context, tx *gorm.DB, entry *entity.LedgerEntry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockWalletRepository) GetLedgerEntryByReference(ctx context.Context, reference string) (*entity.LedgerEntry, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) != nil {
		return args.Get(0).(*entity.LedgerEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWalletRepository) GetLedgerEntriesByUserID(ctx context.Context, userID string, limit int) ([]*entity.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]*entity.LedgerEntry), args.Error(1)
	}
	return nil, args.Error(1)
}
