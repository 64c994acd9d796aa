package usecase_test

import (
	"errors"
	"testing"

	"ajebo-payments/internal/entity"
	"ajebo-payments/internal/params"
	"ajebo-payments/internal/repository"
	"ajebo-payments/internal/usecase"
	"ajebo-payments/pkg/token"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func setupAuthTest(t *testing.T) (*repository.MockOperatorRepository, usecase.AuthUsecase) {
	mockRepo := new(repository.MockOperatorRepository)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	jwtManager := token.NewTokenManager("test-secret", 1)
	uc := usecase.NewAuthUsecase(mockRepo, logger, jwtManager, "bootstrap-token")

	return mockRepo, uc
}

func TestRegister_FirstOperatorWithBootstrapToken(t *testing.T) {
	mockRepo, uc := setupAuthTest(t)

	mockRepo.On("Count").Return(int64(0), nil)
	mockRepo.On("GetByEmail", "ops@example.com").Return(nil, errors.New("operator not found"))
	mockRepo.On("Create", mock.AnythingOfType("*entity.Operator")).Return(nil)

	resp, err := uc.Register(&params.RegisterRequest{
		Name:     "Ops",
		Email:    "ops@example.com",
		Password: "supersecret",
	}, "bootstrap-token", false)

	assert.Nil(t, err)
	assert.NotNil(t, resp)
	assert.NotEmpty(t, resp.Token)
	mockRepo.AssertExpectations(t)
}

func TestRegister_WrongBootstrapToken(t *testing.T) {
	mockRepo, uc := setupAuthTest(t)

	resp, err := uc.Register(&params.RegisterRequest{
		Name:     "Ops",
		Email:    "ops@example.com",
		Password: "supersecret",
	}, "guess", false)

	assert.Nil(t, resp)
	assert.NotNil(t, err)
	assert.Equal(t, 401, err.StatusCode)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestRegister_BootstrapClosedAfterFirstOperator(t *testing.T) {
	mockRepo, uc := setupAuthTest(t)

	mockRepo.On("Count").Return(int64(1), nil)

	resp, err := uc.Register(&params.RegisterRequest{
		Name:     "Ops",
		Email:    "ops@example.com",
		Password: "supersecret",
	}, "bootstrap-token", false)

	assert.Nil(t, resp)
	assert.NotNil(t, err)
	assert.Equal(t, "bootstrap registration is closed", err.Message)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestRegister_ByExistingOperatorSkipsBootstrap(t *testing.T) {
	mockRepo, uc := setupAuthTest(t)

	mockRepo.On("GetByEmail", "new@example.com").Return(nil, errors.New("operator not found"))
	mockRepo.On("Create", mock.AnythingOfType("*entity.Operator")).Return(nil)

	resp, err := uc.Register(&params.RegisterRequest{
		Name:     "New Operator",
		Email:    "new@example.com",
		Password: "supersecret",
	}, "", true)

	assert.Nil(t, err)
	assert.NotNil(t, resp)
	mockRepo.AssertNotCalled(t, "Count")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	mockRepo, uc := setupAuthTest(t)

	existing := &entity.Operator{ID: uuid.New(), Email: "ops@example.com"}
	mockRepo.On("GetByEmail", "ops@example.com").Return(existing, nil)

	resp, err := uc.Register(&params.RegisterRequest{
		Name:     "Ops",
		Email:    "ops@example.com",
		Password: "supersecret",
	}, "", true)

	assert.Nil(t, resp)
	assert.NotNil(t, err)
	assert.Equal(t, "operator with this email already exists", err.Message)
}

func TestLogin_Success(t *testing.T) {
	mockRepo, uc := setupAuthTest(t)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	operator := &entity.Operator{
		ID:       uuid.New(),
		Name:     "Ops",
		Email:    "ops@example.com",
		Password: string(hashed),
	}

	mockRepo.On("GetByEmail", "ops@example.com").Return(operator, nil)

	resp, err := uc.Login(&params.LoginRequest{
		Email:    "ops@example.com",
		Password: "supersecret",
	})

	assert.Nil(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, operator.ID, resp.OperatorID)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_WrongPassword(t *testing.T) {
	mockRepo, uc := setupAuthTest(t)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	operator := &entity.Operator{ID: uuid.New(), Email: "ops@example.com", Password: string(hashed)}

	mockRepo.On("GetByEmail", "ops@example.com").Return(operator, nil)

	resp, err := uc.Login(&params.LoginRequest{
		Email:    "ops@example.com",
		Password: "nope",
	})

	assert.Nil(t, resp)
	assert.NotNil(t, err)
	assert.Equal(t, "invalid email or password", err.Message)
}

func TestLogin_UnknownOperator(t *testing.T) {
	mockRepo, uc := setupAuthTest(t)

	mockRepo.On("GetByEmail", "ghost@example.com").Return(nil, errors.New("operator not found"))

	resp, err := uc.Login(&params.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})

	assert.Nil(t, resp)
	assert.NotNil(t, err)
	assert.Equal(t, "invalid email or password", err.Message)
}
