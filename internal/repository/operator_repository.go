package repository

import (
	"fmt"

	"ajebo-payments/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type OperatorRepository interface {
	Create(operator *entity.Operator) error
	GetByEmail(email string) (*entity.Operator, error)
	GetByID(id uuid.UUID) (*entity.Operator, error)
	Count() (int64, error)
}

type OperatorRepositoryImpl struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewOperatorRepository(db *gorm.DB, logger *logrus.Logger) OperatorRepository {
	return &OperatorRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *OperatorRepositoryImpl) Create(operator *entity.Operator) error {
	if err := r.db.Create(operator).Error; err != nil {
		r.logger.WithError(err).WithField("email", operator.Email).Error("Failed to create operator")
		return fmt.Errorf("failed to create operator: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"operator_id": operator.ID,
		"email":       operator.Email,
	}).Info("Operator created successfully")

	return nil
}

func (r *OperatorRepositoryImpl) GetByEmail(email string) (*entity.Operator, error) {
	var operator entity.Operator
	err := r.db.Where("email = ?", email).First(&operator).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("operator not found")
		}
		r.logger.WithError(err).WithField("email", email).Error("Failed to get operator by email")
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}

	return &operator, nil
}

func (r *OperatorRepositoryImpl) GetByID(id uuid.UUID) (*entity.Operator, error) {
	var operator entity.Operator
	err := r.db.Where("id = ?", id).First(&operator).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("operator not found")
		}
		r.logger.WithError(err).WithField("operator_id", id).Error("Failed to get operator by ID")
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}

	return &operator, nil
}

func (r *OperatorRepositoryImpl) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&entity.Operator{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count operators: %w", err)
	}
	return count, nil
}
