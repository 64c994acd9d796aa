package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"ajebo-payments/internal/entity"
	"ajebo-payments/internal/notification"
	"ajebo-payments/internal/params"
	"ajebo-payments/internal/repository"
	"ajebo-payments/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLedgerTest(t *testing.T) (*repository.MockWalletRepository, *notification.MockNotifier, *miniredis.Miniredis, *redis.Client, usecase.LedgerUsecase, *gorm.DB) {
	mockRepo := new(repository.MockWalletRepository)
	mockNotifier := new(notification.MockNotifier)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}

	uc := usecase.NewLedgerUsecase(mockRepo, logger, rdb, mockNotifier)

	return mockRepo, mockNotifier, mr, rdb, uc, db
}

func TestEnsureWallet_CreatesWhenMissing(t *testing.T) {
	mockRepo, _, _, _, uc, _ := setupLedgerTest(t)

	req := &params.EnsureWalletRequest{
		UserID: "user-42",
		Email:  "guest@example.com",
		Name:   "Guest",
	}

	mockRepo.On("GetByUserID", mock.Anything, "user-42").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*entity.Wallet")).Return(nil)

	resp, err := uc.EnsureWallet(context.Background(), req)

	assert.Nil(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, "user-42", resp.UserID)
	assert.Equal(t, int64(0), resp.Balance)

	mockRepo.AssertExpectations(t)
}

func TestEnsureWallet_ReturnsExisting(t *testing.T) {
	mockRepo, _, _, _, uc, _ := setupLedgerTest(t)

	wallet := &entity.Wallet{
		ID:      uuid.New(),
		UserID:  "user-42",
		Email:   "guest@example.com",
		Name:    "Guest",
		Balance: 5000,
		Version: 3,
	}

	mockRepo.On("GetByUserID", mock.Anything, "user-42").Return(wallet, nil)

	resp, err := uc.EnsureWallet(context.Background(), &params.EnsureWalletRequest{
		UserID: "user-42",
		Email:  "guest@example.com",
		Name:   "Guest",
	})

	assert.Nil(t, err)
	assert.Equal(t, int64(5000), resp.Balance)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestEnsureWallet_PartialProfileKeepsStoredEmail(t *testing.T) {
	mockRepo, _, _, _, uc, _ := setupLedgerTest(t)

	wallet := &entity.Wallet{
		ID:      uuid.New(),
		UserID:  "user-42",
		Email:   "guest@example.com",
		Name:    "Guest",
		Balance: 5000,
		Version: 3,
	}

	mockRepo.On("GetByUserID", mock.Anything, "user-42").Return(wallet, nil)
	mockRepo.On("UpdateProfile", mock.Anything, mock.Anything, wallet.ID, "guest@example.com", "New Name").Return(nil)

	resp, err := uc.EnsureWallet(context.Background(), &params.EnsureWalletRequest{
		UserID: "user-42",
		Name:   "New Name",
	})

	assert.Nil(t, err)
	assert.Equal(t, "guest@example.com", resp.Email)
	assert.Equal(t, "New Name", resp.Name)
	mockRepo.AssertExpectations(t)
}

func TestEnsureWallet_EmptyProfileFieldsSkipRefresh(t *testing.T) {
	mockRepo, _, _, _, uc, _ := setupLedgerTest(t)

	wallet := &entity.Wallet{
		ID:      uuid.New(),
		UserID:  "user-42",
		Email:   "guest@example.com",
		Name:    "Guest",
		Balance: 5000,
		Version: 3,
	}

	mockRepo.On("GetByUserID", mock.Anything, "user-42").Return(wallet, nil)

	resp, err := uc.EnsureWallet(context.Background(), &params.EnsureWalletRequest{UserID: "user-42"})

	assert.Nil(t, err)
	assert.Equal(t, "guest@example.com", resp.Email)
	mockRepo.AssertNotCalled(t, "UpdateProfile")
}

func TestEnsureWallet_CreationRaceRecovers(t *testing.T) {
	mockRepo, _, _, _, uc, _ := setupLedgerTest(t)

	existing := &entity.Wallet{ID: uuid.New(), UserID: "user-42", Balance: 100, Version: 2}

	mockRepo.On("GetByUserID", mock.Anything, "user-42").Return(nil, gorm.ErrRecordNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*entity.Wallet")).Return(gorm.ErrDuplicatedKey)
	mockRepo.On("GetByUserID", mock.Anything, "user-42").Return(existing, nil).Once()

	resp, err := uc.EnsureWallet(context.Background(), &params.EnsureWalletRequest{UserID: "user-42"})

	assert.Nil(t, err)
	assert.Equal(t, int64(100), resp.Balance)
	mockRepo.AssertExpectations(t)
}

func TestCredit_Success(t *testing.T) {
	mockRepo, _, _, _, uc, db := setupLedgerTest(t)

	walletID := uuid.New()
	wallet := &entity.Wallet{
		ID:      walletID,
		UserID:  "user-42",
		Email:   "guest@example.com",
		Name:    "Guest",
		Balance: 1000,
		Version: 1,
	}

	realTx := db.Begin()
	defer realTx.Rollback()

	mockRepo.On("GetLedgerEntryByReference", mock.Anything, "ref_abc").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("BeginTx", mock.Anything).Return(realTx)
	mockRepo.On("GetByUserIDForUpdate", mock.Anything, realTx, "user-42").Return(wallet, nil)
	mockRepo.On("CreateLedgerEntry", mock.Anything, realTx, mock.AnythingOfType("*entity.LedgerEntry")).Return(nil)
	mockRepo.On("UpdateBalance", mock.Anything, realTx, walletID, int64(1500), 2).Return(nil)

	resp, err := uc.Credit(context.Background(), &params.CreditRequest{
		UserID:    "user-42",
		Email:     "guest@example.com",
		Name:      "Guest",
		Amount:    500,
		Reference: "ref_abc",
		Source:    entity.LedgerSourceManual,
	})

	assert.Nil(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, int64(1500), resp.Balance)
	mockRepo.AssertExpectations(t)
}

func TestCredit_PartialProfileKeepsStoredEmail(t *testing.T) {
	mockRepo, _, _, _, uc, db := setupLedgerTest(t)

	walletID := uuid.New()
	wallet := &entity.Wallet{
		ID:      walletID,
		UserID:  "user-42",
		Email:   "guest@example.com",
		Name:    "Guest",
		Balance: 1000,
		Version: 1,
	}

	realTx := db.Begin()
	defer realTx.Rollback()

	mockRepo.On("GetLedgerEntryByReference", mock.Anything, "ref_abc").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("BeginTx", mock.Anything).Return(realTx)
	mockRepo.On("GetByUserIDForUpdate", mock.Anything, realTx, "user-42").Return(wallet, nil)
	mockRepo.On("UpdateProfile", mock.Anything, realTx, walletID, "guest@example.com", "New Name").Return(nil)
	mockRepo.On("CreateLedgerEntry", mock.Anything, realTx, mock.AnythingOfType("*entity.LedgerEntry")).Return(nil)
	mockRepo.On("UpdateBalance", mock.Anything, realTx, walletID, int64(1500), 2).Return(nil)

	resp, err := uc.Credit(context.Background(), &params.CreditRequest{
		UserID:    "user-42",
		Name:      "New Name",
		Amount:    500,
		Reference: "ref_abc",
		Source:    entity.LedgerSourceManual,
	})

	assert.Nil(t, err)
	assert.Equal(t, "guest@example.com", resp.Email)
	assert.Equal(t, "New Name", resp.Name)
	mockRepo.AssertExpectations(t)
}

func TestCredit_InvalidAmount(t *testing.T) {
	_, _, _, _, uc, _ := setupLedgerTest(t)

	resp, err := uc.Credit(context.Background(), &params.CreditRequest{
		UserID:    "user-42",
		Amount:    0,
		Reference: "ref_abc",
		Source:    entity.LedgerSourceManual,
	})

	assert.Nil(t, resp)
	assert.NotNil(t, err)
	assert.Equal(t, "invalid amount", err.Message)
}

func TestCredit_ReplaySameReferenceIsNoOp(t *testing.T) {
	mockRepo, _, _, _, uc, _ := setupLedgerTest(t)

	entry := &entity.LedgerEntry{
		Reference: "ref_abc",
		UserID:    "user-42",
		Type:      entity.LedgerEntryTypeCredit,
		Amount:    500,
		Status:    entity.LedgerEntryStatusCompleted,
	}
	wallet := &entity.Wallet{ID: uuid.New(), UserID: "user-42", Balance: 1500, Version: 2}

	mockRepo.On("GetLedgerEntryByReference", mock.Anything, "ref_abc").Return(entry, nil)
	mockRepo.On("GetByUserID", mock.Anything, "user-42").Return(wallet, nil)

	resp, err := uc.Credit(context.Background(), &params.CreditRequest{
		UserID:    "user-42",
		Amount:    500,
		Reference: "ref_abc",
		Source:    entity.LedgerSourceManual,
	})

	assert.Nil(t, err)
	assert.Equal(t, int64(1500), resp.Balance)
	mockRepo.AssertNotCalled(t, "BeginTx")
}

func TestCredit_DuplicateInsertReturnsCurrentWallet(t *testing.T) {
	mockRepo, _, _, _, uc, db := setupLedgerTest(t)

	walletID := uuid.New()
	wallet := &entity.Wallet{ID: walletID, UserID: "user-42", Balance: 1000, Version: 1}
	current := &entity.Wallet{ID: walletID, UserID: "user-42", Balance: 1500, Version: 2}

	realTx := db.Begin()
	defer realTx.Rollback()

	mockRepo.On("GetLedgerEntryByReference", mock.Anything, "ref_abc").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("BeginTx", mock.Anything).Return(realTx)
	mockRepo.On("GetByUserIDForUpdate", mock.Anything, realTx, "user-42").Return(wallet, nil)
	mockRepo.On("CreateLedgerEntry", mock.Anything, realTx, mock.AnythingOfType("*entity.LedgerEntry")).Return(repository.ErrDuplicateReference)
	mockRepo.On("GetByUserID", mock.Anything, "user-42").Return(current, nil)

	resp, err := uc.Credit(context.Background(), &params.CreditRequest{
		UserID:    "user-42",
		Amount:    500,
		Reference: "ref_abc",
		Source:    entity.LedgerSourceManual,
	})

	assert.Nil(t, err)
	assert.Equal(t, int64(1500), resp.Balance)
	mockRepo.AssertNotCalled(t, "UpdateBalance")
}

func TestCredit_CreatesWalletLazily(t *testing.T) {
	mockRepo, _, _, _, uc, db := setupLedgerTest(t)

	realTx := db.Begin()
	defer realTx.Rollback()

	mockRepo.On("GetLedgerEntryByReference", mock.Anything, "ref_abc").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("BeginTx", mock.Anything).Return(realTx)
	mockRepo.On("GetByUserIDForUpdate", mock.Anything, realTx, "user-42").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.Anything, realTx, mock.AnythingOfType("*entity.Wallet")).Return(nil)
	mockRepo.On("CreateLedgerEntry", mock.Anything, realTx, mock.AnythingOfType("*entity.LedgerEntry")).Return(nil)
	mockRepo.On("UpdateBalance", mock.Anything, realTx, mock.AnythingOfType("uuid.UUID"), int64(500), 2).Return(nil)

	resp, err := uc.Credit(context.Background(), &params.CreditRequest{
		UserID:    "user-42",
		Email:     "guest@example.com",
		Name:      "Guest",
		Amount:    500,
		Reference: "ref_abc",
		Source:    entity.LedgerSourceManual,
	})

	assert.Nil(t, err)
	assert.Equal(t, int64(500), resp.Balance)
	mockRepo.AssertExpectations(t)
}

func TestCredit_GatewaySourceNotifies(t *testing.T) {
	mockRepo, mockNotifier, _, _, uc, db := setupLedgerTest(t)

	walletID := uuid.New()
	wallet := &entity.Wallet{
		ID:      walletID,
		UserID:  "user-42",
		Email:   "guest@example.com",
		Name:    "Guest",
		Balance: 0,
		Version: 1,
	}

	realTx := db.Begin()
	defer realTx.Rollback()

	mockRepo.On("GetLedgerEntryByReference", mock.Anything, "ref_pay").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("BeginTx", mock.Anything).Return(realTx)
	mockRepo.On("GetByUserIDForUpdate", mock.Anything, realTx, "user-42").Return(wallet, nil)
	mockRepo.On("CreateLedgerEntry", mock.Anything, realTx, mock.AnythingOfType("*entity.LedgerEntry")).Return(nil)
	mockRepo.On("UpdateBalance", mock.Anything, realTx, walletID, int64(250000), 2).Return(nil)
	mockNotifier.On("PaymentReceived", mock.Anything, mock.AnythingOfType("notification.PaymentEvent")).Return(nil)

	resp, err := uc.Credit(context.Background(), &params.CreditRequest{
		UserID:    "user-42",
		Email:     "guest@example.com",
		Name:      "Guest",
		Amount:    250000,
		Reference: "ref_pay",
		Source:    entity.LedgerSourcePaystack,
	})

	assert.Nil(t, err)
	assert.Equal(t, int64(250000), resp.Balance)
	mockNotifier.AssertExpectations(t)
}

func TestCredit_OptimisticLockRetriesThenFails(t *testing.T) {
	mockRepo, _, _, _, uc, db := setupLedgerTest(t)

	walletID := uuid.New()
	wallet := &entity.Wallet{ID: walletID, UserID: "user-42", Balance: 1000, Version: 1}

	mockRepo.On("GetLedgerEntryByReference", mock.Anything, "ref_abc").Return(nil, gorm.ErrRecordNotFound)
	// Each attempt must get its own transaction: a shared tx accumulates
	// ErrInvalidTransaction after its first Rollback, which would trip the
	// tx.Error guard before the retry loop is exercised.
	mockRepo.On("BeginTx", mock.Anything).Return(db.Begin()).Once()
	mockRepo.On("BeginTx", mock.Anything).Return(db.Begin()).Once()
	mockRepo.On("BeginTx", mock.Anything).Return(db.Begin()).Once()
	mockRepo.On("GetByUserIDForUpdate", mock.Anything, mock.Anything, "user-42").Return(wallet, nil)
	mockRepo.On("CreateLedgerEntry", mock.Anything, mock.Anything, mock.AnythingOfType("*entity.LedgerEntry")).Return(nil)
	mockRepo.On("UpdateBalance", mock.Anything, mock.Anything, walletID, int64(1500), 2).Return(repository.ErrOptimisticLock)

	resp, err := uc.Credit(context.Background(), &params.CreditRequest{
		UserID:    "user-42",
		Amount:    500,
		Reference: "ref_abc",
		Source:    entity.LedgerSourceManual,
	})

	assert.Nil(t, resp)
	assert.NotNil(t, err)
	assert.Equal(t, "wallet balance update raced", err.Message)
	mockRepo.AssertNumberOfCalls(t, "UpdateBalance", 3)
}

func TestDebit_Success(t *testing.T) {
	mockRepo, _, _, _, uc, db := setupLedgerTest(t)

	walletID := uuid.New()
	wallet := &entity.Wallet{ID: walletID, UserID: "user-42", Balance: 1000, Version: 1}

	realTx := db.Begin()
	defer realTx.Rollback()

	mockRepo.On("GetLedgerEntryByReference", mock.Anything, "adj_1").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("BeginTx", mock.Anything).Return(realTx)
	mockRepo.On("GetByUserIDForUpdate", mock.Anything, realTx, "user-42").Return(wallet, nil)
	mockRepo.On("CreateLedgerEntry", mock.Anything, realTx, mock.AnythingOfType("*entity.LedgerEntry")).Return(nil)
	mockRepo.On("UpdateBalance", mock.Anything, realTx, walletID, int64(400), 2).Return(nil)

	resp, err := uc.Debit(context.Background(), &params.DebitRequest{
		UserID:    "user-42",
		Amount:    600,
		Reference: "adj_1",
		Source:    entity.LedgerSourceAdmin,
	})

	assert.Nil(t, err)
	assert.Equal(t, int64(400), resp.Balance)
	mockRepo.AssertExpectations(t)
}

func TestDebit_InsufficientFunds(t *testing.T) {
	mockRepo, _, _, _, uc, db := setupLedgerTest(t)

	wallet := &entity.Wallet{ID: uuid.New(), UserID: "user-42", Balance: 500, Version: 1}

	realTx := db.Begin()
	defer realTx.Rollback()

	mockRepo.On("GetLedgerEntryByReference", mock.Anything, "adj_1").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("BeginTx", mock.Anything).Return(realTx)
	mockRepo.On("GetByUserIDForUpdate", mock.Anything, realTx, "user-42").Return(wallet, nil)

	resp, err := uc.Debit(context.Background(), &params.DebitRequest{
		UserID:    "user-42",
		Amount:    600,
		Reference: "adj_1",
		Source:    entity.LedgerSourceAdmin,
	})

	assert.Nil(t, resp)
	assert.NotNil(t, err)
	assert.Equal(t, "insufficient funds", err.Message)
	mockRepo.AssertNotCalled(t, "CreateLedgerEntry")
}

func TestDebit_WalletNotFound(t *testing.T) {
	mockRepo, _, _, _, uc, db := setupLedgerTest(t)

	realTx := db.Begin()
	defer realTx.Rollback()

	mockRepo.On("GetLedgerEntryByReference", mock.Anything, "adj_1").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("BeginTx", mock.Anything).Return(realTx)
	mockRepo.On("GetByUserIDForUpdate", mock.Anything, realTx, "user-42").Return(nil, gorm.ErrRecordNotFound)

	resp, err := uc.Debit(context.Background(), &params.DebitRequest{
		UserID:    "user-42",
		Amount:    600,
		Reference: "adj_1",
		Source:    entity.LedgerSourceAdmin,
	})

	assert.Nil(t, resp)
	assert.NotNil(t, err)
	assert.Equal(t, "wallet not found", err.Message)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestDebit_ReplaySameReferenceIsNoOp(t *testing.T) {
	mockRepo, _, _, _, uc, _ := setupLedgerTest(t)

	entry := &entity.LedgerEntry{
		Reference: "adj_1",
		UserID:    "user-42",
		Type:      entity.LedgerEntryTypeDebit,
		Amount:    600,
		Status:    entity.LedgerEntryStatusCompleted,
	}
	wallet := &entity.Wallet{ID: uuid.New(), UserID: "user-42", Balance: 400, Version: 2}

	mockRepo.On("GetLedgerEntryByReference", mock.Anything, "adj_1").Return(entry, nil)
	mockRepo.On("GetByUserID", mock.Anything, "user-42").Return(wallet, nil)

	resp, err := uc.Debit(context.Background(), &params.DebitRequest{
		UserID:    "user-42",
		Amount:    600,
		Reference: "adj_1",
		Source:    entity.LedgerSourceAdmin,
	})

	assert.Nil(t, err)
	assert.Equal(t, int64(400), resp.Balance)
	mockRepo.AssertNotCalled(t, "BeginTx")
}

func TestGetBalance_WalletNotFound(t *testing.T) {
	mockRepo, _, _, _, uc, _ := setupLedgerTest(t)

	mockRepo.On("GetByUserID", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	resp, err := uc.GetBalance(context.Background(), "ghost")

	assert.Nil(t, resp)
	assert.NotNil(t, err)
	assert.Equal(t, "wallet not found", err.Message)
}

func TestListLedger_CacheHit(t *testing.T) {
	mockRepo, _, _, rdb, uc, _ := setupLedgerTest(t)

	cacheKey := fmt.Sprintf("ledger:%s:%d", "user-42", 20)
	expected := &params.LedgerHistoryResponse{UserID: "user-42", Limit: 20}
	cached, _ := json.Marshal(expected)
	rdb.Set(context.Background(), cacheKey, cached, time.Minute)

	resp, err := uc.ListLedger(context.Background(), "user-42", 20)

	assert.Nil(t, err)
	assert.Equal(t, "user-42", resp.UserID)
	mockRepo.AssertNotCalled(t, "GetLedgerEntriesByUserID")
}

func TestListLedger_CacheMissPopulatesCache(t *testing.T) {
	mockRepo, _, _, rdb, uc, _ := setupLedgerTest(t)

	entries := []*entity.LedgerEntry{
		{ID: uuid.New(), Reference: "ref_1", UserID: "user-42", Type: entity.LedgerEntryTypeCredit, Amount: 500, Status: entity.LedgerEntryStatusCompleted, BalanceAfter: 500},
	}

	mockRepo.On("GetLedgerEntriesByUserID", mock.Anything, "user-42", 20).Return(entries, nil)

	resp, err := uc.ListLedger(context.Background(), "user-42", 20)

	assert.Nil(t, err)
	assert.Len(t, resp.Entries, 1)

	cacheKey := fmt.Sprintf("ledger:%s:%d", "user-42", 20)
	val, cacheErr := rdb.Get(context.Background(), cacheKey).Result()
	assert.NoError(t, cacheErr)
	assert.NotEmpty(t, val)
}

func TestSearchWallets_RepositoryError(t *testing.T) {
	mockRepo, _, _, _, uc, _ := setupLedgerTest(t)

	mockRepo.On("Search", mock.Anything, "guest").Return(nil, errors.New("db error"))

	resp, err := uc.SearchWallets(context.Background(), "guest")

	assert.Nil(t, resp)
	assert.NotNil(t, err)
	assert.Equal(t, "failed to search wallets", err.Message)
}
