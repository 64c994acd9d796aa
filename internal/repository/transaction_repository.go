package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ajebo-payments/internal/entity"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTerminalStatus means an update tried to move a payment transaction out
// of a terminal state. The stored record wins; the caller logs and moves on.
var ErrTerminalStatus = errors.New("payment transaction is already in a terminal state")

type TransactionRepository interface {
	Upsert(ctx context.Context, txn *entity.PaymentTransaction) error
	UpdateStatus(ctx context.Context, reference string, status entity.PaymentStatus, gatewayReference string) error
	FindByReference(ctx context.Context, reference string) (*entity.PaymentTransaction, error)
	List(ctx context.Context, limit int, status entity.PaymentStatus) ([]*entity.PaymentTransaction, error)
}

type TransactionRepositoryImpl struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewTransactionRepository(db *gorm.DB, logger *logrus.Logger) TransactionRepository {
	return &TransactionRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts the transaction or, when the reference already exists,
// refreshes its descriptive columns. Status is set only on first insert;
// all status changes go through UpdateStatus so the terminal guard holds
// even when a reference is re-initiated.
func (r *TransactionRepositoryImpl) Upsert(ctx context.Context, txn *entity.PaymentTransaction) error {
	txn.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "reference"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"details", "gateway_reference", "updated_at",
			}),
		}).
		Create(txn).Error

	if err != nil {
		r.logger.WithError(err).WithField("reference", txn.Reference).Error("Failed to upsert payment transaction")
		return fmt.Errorf("failed to upsert payment transaction: %w", err)
	}

	return nil
}

func (r *TransactionRepositoryImpl) UpdateStatus(ctx context.Context, reference string, status entity.PaymentStatus, gatewayReference string) error {
	existing, err := r.FindByReference(ctx, reference)
	if err != nil {
		return err
	}

	if existing.Status.Terminal() && existing.Status != status {
		r.logger.WithFields(logrus.Fields{
			"reference":  reference,
			"stored":     existing.Status,
			"incoming":   status,
			"gateway_id": gatewayReference,
		}).Warn("Refusing to overwrite terminal payment status")
		return ErrTerminalStatus
	}

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if gatewayReference != "" {
		updates["gateway_reference"] = gatewayReference
	}

	// The WHERE clause repeats the terminal check so two concurrent updates
	// cannot both slip past the read above. RowsAffected tells us who lost.
	result := r.db.WithContext(ctx).
		Model(&entity.PaymentTransaction{}).
		Where("reference = ? AND (status NOT IN ? OR status = ?)",
			reference,
			[]entity.PaymentStatus{entity.PaymentStatusCompleted, entity.PaymentStatusFailed},
			status,
		).
		Updates(updates)
	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("reference", reference).Error("Failed to update payment transaction status")
		return fmt.Errorf("failed to update payment transaction status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		r.logger.WithFields(logrus.Fields{
			"reference": reference,
			"incoming":  status,
		}).Warn("Payment status update lost to a concurrent terminal write")
		return ErrTerminalStatus
	}

	return nil
}

func (r *TransactionRepositoryImpl) FindByReference(ctx context.Context, reference string) (*entity.PaymentTransaction, error) {
	var txn entity.PaymentTransaction

	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		r.logger.WithError(err).WithField("reference", reference).Error("Failed to get payment transaction")
		return nil, fmt.Errorf("failed to get payment transaction: %w", err)
	}

	return &txn, nil
}

func (r *TransactionRepositoryImpl) List(ctx context.Context, limit int, status entity.PaymentStatus) ([]*entity.PaymentTransaction, error) {
	var txns []*entity.PaymentTransaction

	query := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&txns).Error; err != nil {
		r.logger.WithError(err).Error("Failed to list payment transactions")
		return nil, fmt.Errorf("failed to list payment transactions: %w", err)
	}

	return txns, nil
}
