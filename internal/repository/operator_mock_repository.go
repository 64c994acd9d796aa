package repository

import (
	"ajebo-payments/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockOperatorRepository struct {
	mock.Mock
}

func (m *MockOperatorRepository) Create(operator *entity.Operator) error {
	args := m.Called(operator)
	return args.Error(0)
}

func (m *MockOperatorRepository) GetByEmail(email string) (*entity.Operator, error) {
	args := m.Called(email)
	if args.Get(0) != nil {
		return args.Get(0).(*entity.Operator), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOperatorRepository) GetByID(id uuid.UUID) (*entity.Operator, error) {
	args := m.Called(id)
	if args.Get(0) != nil {
		return args.Get(0).(*entity.Operator), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOperatorRepository) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}
