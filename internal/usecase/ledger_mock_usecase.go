package usecase

import (
	"context"

	"ajebo-payments/internal/commons/response"
	"ajebo-payments/internal/params"

	"github.com/stretchr/testify/mock"
)

type MockLedgerUsecase struct {
	mock.Mock
}

func (m *MockLedgerUsecase) EnsureWallet(ctx context.Context, req *params.EnsureWalletRequest) (*params.WalletResponse, *response.CustomError) {
	args := m.Called(ctx, req)
	return walletResult(args)
}

func (m *MockLedgerUsecase) Credit(ctx context.Context, req *params.CreditRequest) (*params.WalletResponse, *response.CustomError) {
	args := m.Called(ctx, req)
	return walletResult(args)
}

func (m *MockLedgerUsecase) Debit(ctx context.Context, req *params.DebitRequest) (*params.WalletResponse, *response.CustomError) {
	args := m.Called(ctx, req)
	return walletResult(args)
}

func (m *MockLedgerUsecase) GetBalance(ctx context.Context, userID string) (*params.WalletResponse, *response.CustomError) {
	args := m.Called(ctx, userID)
	return walletResult(args)
}

func (m *MockLedgerUsecase) ListLedger(ctx context.Context, userID string, limit int) (*params.LedgerHistoryResponse, *response.CustomError) {
	args := m.Called(ctx, userID, limit)
	var resp *params.LedgerHistoryResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*params.LedgerHistoryResponse)
	}
	return resp, customError(args, 1)
}

func (m *MockLedgerUsecase) SearchWallets(ctx context.Context, query string) ([]*params.WalletResponse, *response.CustomError) {
	args := m.Called(ctx, query)
	var resp []*params.WalletResponse
	if args.Get(0) != nil {
		resp = args.Get(0).([]*params.WalletResponse)
	}
	return resp, customError(args, 1)
}

func walletResult(args mock.Arguments) (*params.WalletResponse, *response.CustomError) {
	var resp *params.WalletResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*params.WalletResponse)
	}
	return resp, customError(args, 1)
}

func customError(args mock.Arguments, index int) *response.CustomError {
	if args.Get(index) != nil {
		return args.Get(index).(*response.CustomError)
	}
	return nil
}
