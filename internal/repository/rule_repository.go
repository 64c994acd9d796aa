package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ajebo-payments/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type RuleRepository interface {
	Create(ctx context.Context, rule *entity.WalletRule) error
	GetByID(ctx context.Context, ruleID uuid.UUID) (*entity.WalletRule, error)
	List(ctx context.Context, userID string) ([]*entity.WalletRule, error)
	GetDue(ctx context.Context, now time.Time) ([]*entity.WalletRule, error)
	SetActive(ctx context.Context, ruleID uuid.UUID, active bool) error
	AdvanceNextRun(ctx context.Context, ruleID uuid.UUID, from, to time.Time) error
}

type RuleRepositoryImpl struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewRuleRepository(db *gorm.DB, logger *logrus.Logger) RuleRepository {
	return &RuleRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *RuleRepositoryImpl) Create(ctx context.Context, rule *entity.WalletRule) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		r.logger.WithError(err).WithField("user_id", rule.UserID).Error("Failed to create wallet rule")
		return fmt.Errorf("failed to create wallet rule: %w", err)
	}
	return nil
}

func (r *RuleRepositoryImpl) GetByID(ctx context.Context, ruleID uuid.UUID) (*entity.WalletRule, error) {
	var rule entity.WalletRule

	err := r.db.WithContext(ctx).Where("id = ?", ruleID).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		r.logger.WithError(err).WithField("rule_id", ruleID).Error("Failed to get wallet rule")
		return nil, fmt.Errorf("failed to get wallet rule: %w", err)
	}

	return &rule, nil
}

func (r *RuleRepositoryImpl) List(ctx context.Context, userID string) ([]*entity.WalletRule, error) {
	var rules []*entity.WalletRule

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	if err := query.Find(&rules).Error; err != nil {
		r.logger.WithError(err).Error("Failed to list wallet rules")
		return nil, fmt.Errorf("failed to list wallet rules: %w", err)
	}

	return rules, nil
}

func (r *RuleRepositoryImpl) GetDue(ctx context.Context, now time.Time) ([]*entity.WalletRule, error) {
	var rules []*entity.WalletRule

	err := r.db.WithContext(ctx).
		Where("active = ? AND next_run_at <= ?", true, now).
		Order("next_run_at ASC").
		Find(&rules).Error

	if err != nil {
		r.logger.WithError(err).Error("Failed to get due wallet rules")
		return nil, fmt.Errorf("failed to get due wallet rules: %w", err)
	}

	return rules, nil
}

func (r *RuleRepositoryImpl) SetActive(ctx context.Context, ruleID uuid.UUID, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&entity.WalletRule{}).
		Where("id = ?", ruleID).
		Updates(map[string]interface{}{
			"active":     active,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("rule_id", ruleID).Error("Failed to toggle wallet rule")
		return fmt.Errorf("failed to toggle wallet rule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// AdvanceNextRun moves next_run_at from one scheduled time to the next. The
// conditional write means an overlapping scheduler pass that already advanced
// the rule affects zero rows, which callers treat as already done.
func (r *RuleRepositoryImpl) AdvanceNextRun(ctx context.Context, ruleID uuid.UUID, from, to time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entity.WalletRule{}).
		Where("id = ? AND next_run_at = ?", ruleID, from).
		Updates(map[string]interface{}{
			"next_run_at": to,
			"updated_at":  time.Now(),
		})

	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("rule_id", ruleID).Error("Failed to advance wallet rule")
		return fmt.Errorf("failed to advance wallet rule: %w", result.Error)
	}

	return nil
}
