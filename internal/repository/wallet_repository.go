package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ajebo-payments/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrDuplicateReference means a ledger entry with the same reference is
	// already committed. Callers treat it as "already applied".
	ErrDuplicateReference = errors.New("ledger reference already exists")

	// ErrOptimisticLock means the wallet row changed between read and write.
	ErrOptimisticLock = errors.New("wallet was modified by another transaction")
)

type WalletRepository interface {
	BeginTx(ctx context.Context) *gorm.DB
	Create(ctx context.Context, tx *gorm.DB, wallet *entity.Wallet) error
	GetByUserID(ctx context.Context, userID string) (*entity.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx *gorm.DB, userID string) (*entity.Wallet, error)
	UpdateBalance(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, newBalance int64, version int) error
	UpdateProfile(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, email, name string) error
	Search(ctx context.Context, query string) ([]*entity.Wallet, error)
	CreateLedgerEntry(ctx context.Context, tx *gorm.DB, entry *entity.LedgerEntry) error
	GetLedgerEntryByReference(ctx context.Context, reference string) (*entity.LedgerEntry, error)
	GetLedgerEntriesByUserID(ctx context.Context, userID string, limit int) ([]*entity.LedgerEntry, error)
}

type WalletRepositoryImpl struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewWalletRepository(db *gorm.DB, logger *logrus.Logger) WalletRepository {
	return &WalletRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *WalletRepositoryImpl) BeginTx(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Begin()
}

func (r *WalletRepositoryImpl) Create(ctx context.Context, tx *gorm.DB, wallet *entity.Wallet) error {
	db := r.db
	if tx != nil {
		db = tx
	}

	if err := db.WithContext(ctx).Create(wallet).Error; err != nil {
		r.logger.WithError(err).WithField("user_id", wallet.UserID).Error("Failed to create wallet in database")
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (r *WalletRepositoryImpl) GetByUserID(ctx context.Context, userID string) (*entity.Wallet, error) {
	var wallet entity.Wallet

	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		r.logger.WithError(err).WithField("user_id", userID).Error("Failed to get wallet by user ID")
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

func (r *WalletRepositoryImpl) GetByUserIDForUpdate(ctx context.Context, tx *gorm.DB, userID string) (*entity.Wallet, error) {
	var wallet entity.Wallet

	db := r.db
	if tx != nil {
		db = tx
	}

	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&wallet).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		r.logger.WithError(err).WithField("user_id", userID).Error("Failed to get wallet by user ID for update")
		return nil, fmt.Errorf("failed to get wallet for update: %w", err)
	}

	return &wallet, nil
}

func (r *WalletRepositoryImpl) UpdateBalance(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, newBalance int64, version int) error {
	db := r.db
	if tx != nil {
		db = tx
	}

	// Optimistic version check on top of the row lock.
	result := db.WithContext(ctx).
		Model(&entity.Wallet{}).
		Where("id = ? AND version = ?", walletID, version-1).
		Updates(map[string]interface{}{
			"balance": newBalance,
			"version": version,
		})

	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("wallet_id", walletID).Error("Failed to update wallet balance")
		return fmt.Errorf("failed to update wallet balance: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrOptimisticLock
	}

	return nil
}

func (r *WalletRepositoryImpl) UpdateProfile(ctx context.Context, tx *gorm.DB, walletID uuid.UUID, email, name string) error {
	db := r.db
	if tx != nil {
		db = tx
	}

	if err := db.WithContext(ctx).
		Model(&entity.Wallet{}).
		Where("id = ?", walletID).
		Updates(map[string]interface{}{
			"email": email,
			"name":  name,
		}).Error; err != nil {
		r.logger.WithError(err).WithField("wallet_id", walletID).Error("Failed to update wallet profile")
		return fmt.Errorf("failed to update wallet profile: %w", err)
	}

	return nil
}

func (r *WalletRepositoryImpl) Search(ctx context.Context, query string) ([]*entity.Wallet, error) {
	var wallets []*entity.Wallet

	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ? OR LOWER(user_id) LIKE ?", pattern, pattern, pattern).
		Order("created_at DESC").
		Find(&wallets).Error

	if err != nil {
		r.logger.WithError(err).WithField("query", query).Error("Failed to search wallets")
		return nil, fmt.Errorf("failed to search wallets: %w", err)
	}

	return wallets, nil
}

func (r *WalletRepositoryImpl) CreateLedgerEntry(ctx context.Context, tx *gorm.DB, entry *entity.LedgerEntry) error {
	db := r.db
	if tx != nil {
		db = tx
	}

	if err := db.WithContext(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateReference
		}
		r.logger.WithError(err).WithField("reference", entry.Reference).Error("Failed to create ledger entry")
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}

func (r *WalletRepositoryImpl) GetLedgerEntryByReference(ctx context.Context, reference string) (*entity.LedgerEntry, error) {
	var entry entity.LedgerEntry

	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		r.logger.WithError(err).WithField("reference", reference).Error("Failed to get ledger entry by reference")
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return &entry, nil
}

func (r *WalletRepositoryImpl) GetLedgerEntriesByUserID(ctx context.Context, userID string, limit int) ([]*entity.LedgerEntry, error) {
	var entries []*entity.LedgerEntry

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error

	if err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Error("Failed to get ledger entries")
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}

	return entries, nil
}
