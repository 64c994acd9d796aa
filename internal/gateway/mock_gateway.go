package gateway

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
	GatewayName string
}

func (m *MockGateway) Name() string {
	if m.GatewayName != "" {
		return m.GatewayName
	}
	return "mock"
}

func (m *MockGateway) Initialize(ctx context.Context, req InitRequest) (*InitResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) != nil {
		return args.Get(0).(*InitResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) != nil {
		return args.Get(0).(*VerifyResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) VerifySignature(body []byte, signature string) bool {
	args := m.Called(body, signature)
	return args.Bool(0)
}

func (m *MockGateway) ParseWebhook(body []byte) (*WebhookEvent, error) {
	args := m.Called(body)
	if args.Get(0) != nil {
		return args.Get(0).(*WebhookEvent), args.Error(1)
	}
	return nil, args.Error(1)
}
