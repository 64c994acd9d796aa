package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ajebo-payments/internal/commons/response"
	"ajebo-payments/internal/entity"
	"ajebo-payments/internal/notification"
	"ajebo-payments/internal/params"
	"ajebo-payments/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// maxBalanceAttempts bounds the read-check-write retries when the optimistic
// version check on the wallet row loses a race.
const maxBalanceAttempts = 3

const ledgerCacheTTL = 5 * time.Minute

// LedgerUsecase is the only component allowed to write wallet balances.
// Every mutation appends a ledger entry and updates the balance in one
// database transaction, serialized per user by a row lock.
type LedgerUsecase interface {
	EnsureWallet(ctx context.Context, req *params.EnsureWalletRequest) (*params.WalletResponse, *response.CustomError)
	Credit(ctx context.Context, req *params.CreditRequest) (*params.WalletResponse, *response.CustomError)
	Debit(ctx context.Context, req *params.DebitRequest) (*params.WalletResponse, *response.CustomError)
	GetBalance(ctx context.Context, userID string) (*params.WalletResponse, *response.CustomError)
	ListLedger(ctx context.Context, userID string, limit int) (*params.LedgerHistoryResponse, *response.CustomError)
	SearchWallets(ctx context.Context, query string) ([]*params.WalletResponse, *response.CustomError)
}

type LedgerUsecaseImpl struct {
	repo     repository.WalletRepository
	logger   *logrus.Logger
	cache    *redis.Client
	notifier notification.Notifier
}

func NewLedgerUsecase(repo repository.WalletRepository, logger *logrus.Logger, cache *redis.Client, notifier notification.Notifier) LedgerUsecase {
	return &LedgerUsecaseImpl{
		repo:     repo,
		logger:   logger,
		cache:    cache,
		notifier: notifier,
	}
}

func (u *LedgerUsecaseImpl) EnsureWallet(ctx context.Context, req *params.EnsureWalletRequest) (*params.WalletResponse, *response.CustomError) {
	wallet, err := u.repo.GetByUserID(ctx, req.UserID)
	if err == nil {
		if email, name, changed := mergedProfile(wallet, req.Email, req.Name); changed {
			if err := u.repo.UpdateProfile(ctx, nil, wallet.ID, email, name); err != nil {
				u.logger.WithError(err).WithField("user_id", req.UserID).Error("Failed to refresh wallet profile")
				return nil, response.RepositoryError("failed to update wallet profile")
			}
			wallet.Email = email
			wallet.Name = name
		}
		return params.NewWalletResponse(wallet), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.RepositoryError("failed to get wallet")
	}

	wallet = &entity.Wallet{
		UserID:  req.UserID,
		Email:   req.Email,
		Name:    req.Name,
		Balance: 0,
		Version: 1,
	}
	if err := u.repo.Create(ctx, nil, wallet); err != nil {
		// Lost a creation race: the unique user_id index means the wallet
		// now exists, so read it back.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, getErr := u.repo.GetByUserID(ctx, req.UserID)
			if getErr == nil {
				return params.NewWalletResponse(existing), nil
			}
		}
		u.logger.WithError(err).WithField("user_id", req.UserID).Error("Failed to create wallet")
		return nil, response.RepositoryError("failed to create wallet")
	}

	return params.NewWalletResponse(wallet), nil
}

func (u *LedgerUsecaseImpl) Credit(ctx context.Context, req *params.CreditRequest) (*params.WalletResponse, *response.CustomError) {
	if req.Amount <= 0 {
		return nil, response.BadRequestError("invalid amount")
	}

	if resp, done, custErr := u.replayByReference(ctx, req.Reference); done {
		return resp, custErr
	}

	var lastErr *response.CustomError
	for attempt := 1; attempt <= maxBalanceAttempts; attempt++ {
		resp, retry, custErr := u.creditOnce(ctx, req)
		if custErr == nil {
			return resp, nil
		}
		if !retry {
			return nil, custErr
		}
		lastErr = custErr
		u.logger.WithFields(logrus.Fields{
			"user_id":   req.UserID,
			"reference": req.Reference,
			"attempt":   attempt,
		}).Warn("Credit hit a concurrent wallet update, retrying")
		time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
	}

	return nil, lastErr
}

func (u *LedgerUsecaseImpl) creditOnce(ctx context.Context, req *params.CreditRequest) (*params.WalletResponse, bool, *response.CustomError) {
	tx := u.repo.BeginTx(ctx)
	if tx.Error != nil {
		u.logger.WithError(tx.Error).Error("Failed to begin transaction")
		return nil, false, response.GeneralError("failed to begin transaction")
	}
	defer tx.Rollback()

	wallet, err := u.repo.GetByUserIDForUpdate(ctx, tx, req.UserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, response.RepositoryError("failed to get wallet for update")
		}
		// Credits create the wallet lazily.
		wallet = &entity.Wallet{
			UserID:  req.UserID,
			Email:   req.Email,
			Name:    req.Name,
			Balance: 0,
			Version: 1,
		}
		if err := u.repo.Create(ctx, tx, wallet); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, true, response.RepositoryError("wallet creation raced")
			}
			return nil, false, response.RepositoryError("failed to create wallet")
		}
	} else if email, name, changed := mergedProfile(wallet, req.Email, req.Name); changed {
		if err := u.repo.UpdateProfile(ctx, tx, wallet.ID, email, name); err != nil {
			return nil, false, response.RepositoryError("failed to update wallet profile")
		}
		wallet.Email = email
		wallet.Name = name
	}

	newBalance := wallet.Balance + req.Amount
	newVersion := wallet.Version + 1

	entry := &entity.LedgerEntry{
		Reference:    req.Reference,
		UserID:       req.UserID,
		Type:         entity.LedgerEntryTypeCredit,
		Source:       req.Source,
		Amount:       req.Amount,
		Status:       entity.LedgerEntryStatusCompleted,
		Description:  req.Description,
		Metadata:     req.Metadata,
		BalanceAfter: newBalance,
		CreatedBy:    req.CreatedBy,
		CreatedAt:    time.Now(),
	}

	if err := u.repo.CreateLedgerEntry(ctx, tx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateReference) {
			// A concurrent writer already applied this reference.
			tx.Rollback()
			current, getErr := u.repo.GetByUserID(ctx, req.UserID)
			if getErr != nil {
				return nil, false, response.RepositoryError("failed to get wallet")
			}
			return params.NewWalletResponse(current), false, nil
		}
		return nil, false, response.RepositoryError("failed to create ledger entry")
	}

	if err := u.repo.UpdateBalance(ctx, tx, wallet.ID, newBalance, newVersion); err != nil {
		if errors.Is(err, repository.ErrOptimisticLock) {
			return nil, true, response.RepositoryError("wallet balance update raced")
		}
		return nil, false, response.RepositoryError("failed to update wallet balance")
	}

	if err := tx.Commit().Error; err != nil {
		u.logger.WithError(err).Error("Failed to commit credit transaction")
		return nil, false, response.RepositoryError("failed to commit transaction")
	}

	u.invalidateLedgerCache(ctx, req.UserID)

	u.logger.WithFields(logrus.Fields{
		"user_id":   req.UserID,
		"reference": req.Reference,
		"source":    req.Source,
		"amount":    req.Amount,
		"balance":   newBalance,
	}).Info("Wallet credited")

	if isGatewaySource(req.Source) {
		if err := u.notifier.PaymentReceived(ctx, notification.PaymentEvent{
			UserID:    req.UserID,
			Email:     wallet.Email,
			Name:      wallet.Name,
			Reference: req.Reference,
			Source:    req.Source,
			Amount:    req.Amount,
			Balance:   newBalance,
		}); err != nil {
			u.logger.WithError(err).WithField("reference", req.Reference).Warn("Payment notification failed")
		}
	}

	wallet.Balance = newBalance
	wallet.Version = newVersion
	wallet.UpdatedAt = time.Now()
	return params.NewWalletResponse(wallet), false, nil
}

func (u *LedgerUsecaseImpl) Debit(ctx context.Context, req *params.DebitRequest) (*params.WalletResponse, *response.CustomError) {
	if req.Amount <= 0 {
		return nil, response.BadRequestError("invalid amount")
	}

	if resp, done, custErr := u.replayByReference(ctx, req.Reference); done {
		return resp, custErr
	}

	var lastErr *response.CustomError
	for attempt := 1; attempt <= maxBalanceAttempts; attempt++ {
		resp, retry, custErr := u.debitOnce(ctx, req)
		if custErr == nil {
			return resp, nil
		}
		if !retry {
			return nil, custErr
		}
		lastErr = custErr
		u.logger.WithFields(logrus.Fields{
			"user_id":   req.UserID,
			"reference": req.Reference,
			"attempt":   attempt,
		}).Warn("Debit hit a concurrent wallet update, retrying")
		time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
	}

	return nil, lastErr
}

func (u *LedgerUsecaseImpl) debitOnce(ctx context.Context, req *params.DebitRequest) (*params.WalletResponse, bool, *response.CustomError) {
	tx := u.repo.BeginTx(ctx)
	if tx.Error != nil {
		u.logger.WithError(tx.Error).Error("Failed to begin transaction")
		return nil, false, response.GeneralError("failed to begin transaction")
	}
	defer tx.Rollback()

	wallet, err := u.repo.GetByUserIDForUpdate(ctx, tx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Debits never create wallets.
			return nil, false, response.NotFoundError("wallet not found")
		}
		return nil, false, response.RepositoryError("failed to get wallet for update")
	}

	if wallet.Balance < req.Amount {
		u.logger.WithFields(logrus.Fields{
			"user_id":      req.UserID,
			"balance":      wallet.Balance,
			"debit_amount": req.Amount,
		}).Warn("Insufficient balance for debit")
		return nil, false, response.UnprocessableEntityError("insufficient funds")
	}

	newBalance := wallet.Balance - req.Amount
	newVersion := wallet.Version + 1

	entry := &entity.LedgerEntry{
		Reference:    req.Reference,
		UserID:       req.UserID,
		Type:         entity.LedgerEntryTypeDebit,
		Source:       req.Source,
		Amount:       req.Amount,
		Status:       entity.LedgerEntryStatusCompleted,
		Description:  req.Description,
		Metadata:     req.Metadata,
		BalanceAfter: newBalance,
		CreatedBy:    req.CreatedBy,
		CreatedAt:    time.Now(),
	}

	if err := u.repo.CreateLedgerEntry(ctx, tx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateReference) {
			tx.Rollback()
			current, getErr := u.repo.GetByUserID(ctx, req.UserID)
			if getErr != nil {
				return nil, false, response.RepositoryError("failed to get wallet")
			}
			return params.NewWalletResponse(current), false, nil
		}
		return nil, false, response.RepositoryError("failed to create ledger entry")
	}

	if err := u.repo.UpdateBalance(ctx, tx, wallet.ID, newBalance, newVersion); err != nil {
		if errors.Is(err, repository.ErrOptimisticLock) {
			return nil, true, response.RepositoryError("wallet balance update raced")
		}
		return nil, false, response.RepositoryError("failed to update wallet balance")
	}

	if err := tx.Commit().Error; err != nil {
		u.logger.WithError(err).Error("Failed to commit debit transaction")
		return nil, false, response.RepositoryError("failed to commit transaction")
	}

	u.invalidateLedgerCache(ctx, req.UserID)

	u.logger.WithFields(logrus.Fields{
		"user_id":   req.UserID,
		"reference": req.Reference,
		"source":    req.Source,
		"amount":    req.Amount,
		"balance":   newBalance,
	}).Info("Wallet debited")

	wallet.Balance = newBalance
	wallet.Version = newVersion
	wallet.UpdatedAt = time.Now()
	return params.NewWalletResponse(wallet), false, nil
}

// replayByReference resolves the idempotent-replay case: a completed ledger
// entry for the reference means the operation already happened, so the
// current wallet is returned unchanged.
func (u *LedgerUsecaseImpl) replayByReference(ctx context.Context, reference string) (*params.WalletResponse, bool, *response.CustomError) {
	entry, err := u.repo.GetLedgerEntryByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, true, response.RepositoryError("failed to check ledger reference")
	}
	if entry.Status != entity.LedgerEntryStatusCompleted {
		return nil, false, nil
	}

	u.logger.WithFields(logrus.Fields{
		"reference": reference,
		"user_id":   entry.UserID,
	}).Info("Ledger reference already applied, returning current wallet")

	wallet, err := u.repo.GetByUserID(ctx, entry.UserID)
	if err != nil {
		return nil, true, response.RepositoryError("failed to get wallet")
	}
	return params.NewWalletResponse(wallet), true, nil
}

func (u *LedgerUsecaseImpl) GetBalance(ctx context.Context, userID string) (*params.WalletResponse, *response.CustomError) {
	wallet, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFoundError("wallet not found")
		}
		u.logger.WithError(err).WithField("user_id", userID).Error("Failed to get wallet")
		return nil, response.RepositoryError("failed to get wallet")
	}

	return params.NewWalletResponse(wallet), nil
}

func (u *LedgerUsecaseImpl) ListLedger(ctx context.Context, userID string, limit int) (*params.LedgerHistoryResponse, *response.CustomError) {
	cacheKey := fmt.Sprintf("ledger:%s:%d", userID, limit)

	if val, err := u.cache.Get(ctx, cacheKey).Result(); err == nil {
		var cached params.LedgerHistoryResponse
		if json.Unmarshal([]byte(val), &cached) == nil {
			return &cached, nil
		}
	}

	entries, err := u.repo.GetLedgerEntriesByUserID(ctx, userID, limit)
	if err != nil {
		u.logger.WithError(err).WithField("user_id", userID).Error("Failed to get ledger history")
		return nil, response.RepositoryError("failed to get ledger history")
	}

	entryResponses := make([]*params.LedgerEntryResponse, len(entries))
	for i, e := range entries {
		entryResponses[i] = &params.LedgerEntryResponse{
			ID:           e.ID,
			Reference:    e.Reference,
			UserID:       e.UserID,
			Type:         e.Type,
			Source:       e.Source,
			Amount:       e.Amount,
			Status:       e.Status,
			Description:  e.Description,
			BalanceAfter: e.BalanceAfter,
			CreatedBy:    e.CreatedBy,
			CreatedAt:    e.CreatedAt,
		}
	}

	resp := &params.LedgerHistoryResponse{
		UserID:  userID,
		Entries: entryResponses,
		Limit:   limit,
	}

	if data, err := json.Marshal(resp); err == nil {
		if err := u.cache.Set(ctx, cacheKey, data, ledgerCacheTTL).Err(); err != nil {
			u.logger.WithError(err).Warn("Failed to cache ledger history")
		}
	}

	return resp, nil
}

func (u *LedgerUsecaseImpl) SearchWallets(ctx context.Context, query string) ([]*params.WalletResponse, *response.CustomError) {
	wallets, err := u.repo.Search(ctx, query)
	if err != nil {
		u.logger.WithError(err).WithField("query", query).Error("Failed to search wallets")
		return nil, response.RepositoryError("failed to search wallets")
	}

	results := make([]*params.WalletResponse, len(wallets))
	for i, w := range wallets {
		results[i] = params.NewWalletResponse(w)
	}
	return results, nil
}

func (u *LedgerUsecaseImpl) invalidateLedgerCache(ctx context.Context, userID string) {
	pattern := fmt.Sprintf("ledger:%s:*", userID)
	keys, err := u.cache.Keys(ctx, pattern).Result()
	if err != nil {
		u.logger.WithError(err).Warn("Failed to fetch ledger cache keys for invalidation")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := u.cache.Del(ctx, keys...).Err(); err != nil {
		u.logger.WithError(err).Warn("Failed to invalidate ledger cache")
	}
}

// mergedProfile resolves the profile values a refresh should store. Empty
// request fields fall back to the stored ones, so a caller that knows only
// the name never blanks the email (and vice versa).
func mergedProfile(wallet *entity.Wallet, email, name string) (string, string, bool) {
	if email == "" {
		email = wallet.Email
	}
	if name == "" {
		name = wallet.Name
	}
	return email, name, email != wallet.Email || name != wallet.Name
}

func isGatewaySource(source string) bool {
	return source == entity.LedgerSourcePaystack || source == entity.LedgerSourceMonnify
}
