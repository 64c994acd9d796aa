package usecase

import (
	"crypto/subtle"

	"ajebo-payments/internal/commons/response"
	"ajebo-payments/internal/entity"
	"ajebo-payments/internal/params"
	"ajebo-payments/internal/repository"
	"ajebo-payments/pkg/token"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthUsecase manages operator accounts. The first operator is created with
// the bootstrap token; afterwards only an authenticated operator can
// register another.
type AuthUsecase interface {
	Register(req *params.RegisterRequest, bootstrapToken string, byOperator bool) (*params.AuthResponse, *response.CustomError)
	Login(req *params.LoginRequest) (*params.AuthResponse, *response.CustomError)
}

type AuthUsecaseImpl struct {
	operatorRepo   repository.OperatorRepository
	logger         *logrus.Logger
	jwtManager     *token.TokenManager
	bootstrapToken string
}

func NewAuthUsecase(operatorRepo repository.OperatorRepository, logger *logrus.Logger, jwtManager *token.TokenManager, bootstrapToken string) AuthUsecase {
	return &AuthUsecaseImpl{
		operatorRepo:   operatorRepo,
		logger:         logger,
		jwtManager:     jwtManager,
		bootstrapToken: bootstrapToken,
	}
}

func (s *AuthUsecaseImpl) Register(req *params.RegisterRequest, bootstrapToken string, byOperator bool) (*params.AuthResponse, *response.CustomError) {
	if !byOperator {
		if s.bootstrapToken == "" ||
			subtle.ConstantTimeCompare([]byte(bootstrapToken), []byte(s.bootstrapToken)) != 1 {
			return nil, response.UnauthorizedError("operator registration requires the bootstrap token")
		}
		// The bootstrap token only works while no operator exists.
		count, err := s.operatorRepo.Count()
		if err != nil {
			s.logger.WithError(err).Error("Failed to count operators")
			return nil, response.RepositoryError("failed to count operators")
		}
		if count > 0 {
			return nil, response.UnauthorizedError("bootstrap registration is closed")
		}
	}

	if _, err := s.operatorRepo.GetByEmail(req.Email); err == nil {
		s.logger.WithField("email", req.Email).Warn("Registration attempt with existing email")
		return nil, response.BadRequestError("operator with this email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("Failed to hash password")
		return nil, response.GeneralError("failed to hash password")
	}

	operator := &entity.Operator{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
	}

	if err := s.operatorRepo.Create(operator); err != nil {
		s.logger.WithError(err).WithField("email", req.Email).Error("Failed to create operator")
		return nil, response.RepositoryError("failed to create operator")
	}

	signed, err := s.jwtManager.GenerateToken(operator.ID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to generate token")
		return nil, response.GeneralError("failed to generate token")
	}

	return &params.AuthResponse{
		OperatorID: operator.ID,
		Name:       operator.Name,
		Email:      operator.Email,
		Token:      signed,
	}, nil
}

func (s *AuthUsecaseImpl) Login(req *params.LoginRequest) (*params.AuthResponse, *response.CustomError) {
	operator, err := s.operatorRepo.GetByEmail(req.Email)
	if err != nil {
		s.logger.WithField("email", req.Email).Warn("Login attempt for unknown operator")
		return nil, response.UnauthorizedError("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.Password), []byte(req.Password)); err != nil {
		s.logger.WithField("email", req.Email).Warn("Login attempt with wrong password")
		return nil, response.UnauthorizedError("invalid email or password")
	}

	signed, err := s.jwtManager.GenerateToken(operator.ID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to generate token")
		return nil, response.GeneralError("failed to generate token")
	}

	return &params.AuthResponse{
		OperatorID: operator.ID,
		Name:       operator.Name,
		Email:      operator.Email,
		Token:      signed,
	}, nil
}
