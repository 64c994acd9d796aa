package repository

import (
	"context"
	"time"

	"ajebo-payments/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) Create(ctx context.Context, rule *entity.WalletRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) GetByID(ctx context.Context, ruleID uuid.UUID) (*entity.WalletRule, error) {
	args := m.Called(ctx, ruleID)
	if args.Get(0) != nil {
		return args.Get(0).(*entity.WalletRule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRuleRepository) List(ctx context.Context, userID string) ([]*entity.WalletRule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]*entity.WalletRule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRuleRepository) GetDue(ctx context.Context, now time.Time) ([]*entity.WalletRule, error) {
	args := m.Called(ctx, now)
	if args.Get(0) != nil {
		return args.Get(0).([]*entity.WalletRule), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRuleRepository) SetActive(ctx context.Context, ruleID uuid.UUID, active bool) error {
	args := m.Called(ctx, ruleID, active)
	return args.Error(0)
}

func (m *MockRuleRepository) AdvanceNextRun(ctx context.Context, ruleID uuid.UUID, from, to time.Time) error {
	args := m.Called(ctx, ruleID, from, to)
	return args.Error(0)
}
