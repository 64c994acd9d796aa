package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ajebo-payments/internal/commons/response"
	"ajebo-payments/internal/entity"
	"ajebo-payments/internal/params"
	"ajebo-payments/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RuleUsecase manages recurring wallet credits. RunDueRules is triggered
// externally (ticker or admin endpoint) and is safe to invoke concurrently
// with itself: the per-period credit reference makes overlapping passes
// collapse into one ledger entry.
type RuleUsecase interface {
	CreateRule(ctx context.Context, req *params.CreateRuleRequest, createdBy string) (*params.RuleResponse, *response.CustomError)
	SetRuleActive(ctx context.Context, ruleID uuid.UUID, active bool) (*params.RuleResponse, *response.CustomError)
	ListRules(ctx context.Context, userID string) ([]*params.RuleResponse, *response.CustomError)
	RunDueRules(ctx context.Context) (*params.RuleRunReport, *response.CustomError)
}

type RuleUsecaseImpl struct {
	repo   repository.RuleRepository
	ledger LedgerUsecase
	logger *logrus.Logger
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewRuleUsecase(repo repository.RuleRepository, ledger LedgerUsecase, logger *logrus.Logger) RuleUsecase {
	return &RuleUsecaseImpl{
		repo:   repo,
		ledger: ledger,
		logger: logger,
		clock:  time.Now,
	}
}

// NewRuleUsecaseWithClock is used by tests that need a fixed clock.
func NewRuleUsecaseWithClock(repo repository.RuleRepository, ledger LedgerUsecase, logger *logrus.Logger, clock func() time.Time) RuleUsecase {
	return &RuleUsecaseImpl{
		repo:   repo,
		ledger: ledger,
		logger: logger,
		clock:  clock,
	}
}

func (u *RuleUsecaseImpl) CreateRule(ctx context.Context, req *params.CreateRuleRequest, createdBy string) (*params.RuleResponse, *response.CustomError) {
	if req.Amount <= 0 {
		return nil, response.BadRequestError("invalid amount")
	}

	schedule := entity.RuleSchedule(req.Schedule)
	now := u.clock()

	rule := &entity.WalletRule{
		UserID:      req.UserID,
		Email:       req.Email,
		Name:        req.Name,
		Amount:      req.Amount,
		Schedule:    schedule,
		Description: req.Description,
		Active:      true,
		NextRunAt:   schedule.Next(now),
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := u.repo.Create(ctx, rule); err != nil {
		u.logger.WithError(err).WithField("user_id", req.UserID).Error("Failed to create wallet rule")
		return nil, response.RepositoryError("failed to create wallet rule")
	}

	return params.NewRuleResponse(rule), nil
}

func (u *RuleUsecaseImpl) SetRuleActive(ctx context.Context, ruleID uuid.UUID, active bool) (*params.RuleResponse, *response.CustomError) {
	if err := u.repo.SetActive(ctx, ruleID, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFoundError("wallet rule not found")
		}
		u.logger.WithError(err).WithField("rule_id", ruleID).Error("Failed to toggle wallet rule")
		return nil, response.RepositoryError("failed to toggle wallet rule")
	}

	rule, err := u.repo.GetByID(ctx, ruleID)
	if err != nil {
		return nil, response.RepositoryError("failed to get wallet rule")
	}

	return params.NewRuleResponse(rule), nil
}

func (u *RuleUsecaseImpl) ListRules(ctx context.Context, userID string) ([]*params.RuleResponse, *response.CustomError) {
	rules, err := u.repo.List(ctx, userID)
	if err != nil {
		u.logger.WithError(err).Error("Failed to list wallet rules")
		return nil, response.RepositoryError("failed to list wallet rules")
	}

	results := make([]*params.RuleResponse, len(rules))
	for i, r := range rules {
		results[i] = params.NewRuleResponse(r)
	}
	return results, nil
}

// RunDueRules credits every active rule whose next_run_at has passed. One
// failing rule never aborts the rest; its next_run_at stays put so the next
// pass retries it.
func (u *RuleUsecaseImpl) RunDueRules(ctx context.Context) (*params.RuleRunReport, *response.CustomError) {
	now := u.clock()

	rules, err := u.repo.GetDue(ctx, now)
	if err != nil {
		u.logger.WithError(err).Error("Failed to load due wallet rules")
		return nil, response.RepositoryError("failed to load due wallet rules")
	}

	report := &params.RuleRunReport{
		RanAt:    now,
		Due:      len(rules),
		Outcomes: make([]*params.RuleRunOutcome, 0, len(rules)),
	}

	for _, rule := range rules {
		report.Outcomes = append(report.Outcomes, u.runRule(ctx, rule))
	}

	if report.Due > 0 {
		u.logger.WithFields(logrus.Fields{
			"due":      report.Due,
			"outcomes": len(report.Outcomes),
		}).Info("Scheduler pass completed")
	}

	return report, nil
}

func (u *RuleUsecaseImpl) runRule(ctx context.Context, rule *entity.WalletRule) *params.RuleRunOutcome {
	// The reference is derived from the rule and its due period, not from
	// the clock, so a retried or overlapping pass mints the same key and
	// the ledger collapses it into one credit.
	reference := fmt.Sprintf("rule:%s:%d", rule.ID, rule.NextRunAt.Unix())

	outcome := &params.RuleRunOutcome{
		RuleID:    rule.ID,
		Reference: reference,
		NextRunAt: rule.NextRunAt,
	}

	_, custErr := u.ledger.Credit(ctx, &params.CreditRequest{
		UserID:      rule.UserID,
		Email:       rule.Email,
		Name:        rule.Name,
		Amount:      rule.Amount,
		Reference:   reference,
		Source:      entity.LedgerSourceAuto,
		Description: rule.Description,
		CreatedBy:   "scheduler",
	})
	if custErr != nil {
		u.logger.WithFields(logrus.Fields{
			"rule_id":   rule.ID,
			"reference": reference,
			"error":     custErr.Message,
		}).Error("Rule credit failed, next_run_at left unadvanced")
		outcome.Error = custErr.Message
		return outcome
	}

	next := rule.Schedule.Next(rule.NextRunAt)
	if err := u.repo.AdvanceNextRun(ctx, rule.ID, rule.NextRunAt, next); err != nil {
		// The credit is committed and idempotent; the next pass replays the
		// reference as a no-op and advances the rule then.
		u.logger.WithError(err).WithField("rule_id", rule.ID).Error("Failed to advance rule after credit")
		outcome.Credited = true
		outcome.Error = "credited but not advanced"
		return outcome
	}

	outcome.Credited = true
	outcome.NextRunAt = next
	return outcome
}
