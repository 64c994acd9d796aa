package notification

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

// PaymentEvent describes a confirmed wallet credit worth telling the user
// about.
type PaymentEvent struct {
	UserID    string
	Email     string
	Name      string
	Reference string
	Source    string
	Amount    int64
	Balance   int64
}

// Notifier decouples confirmation messages from the ledger. Delivery
// failures must never affect the outcome of a credit.
type Notifier interface {
	PaymentReceived(ctx context.Context, event PaymentEvent) error
}

type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) PaymentReceived(ctx context.Context, event PaymentEvent) error {
	n.logger.WithFields(logrus.Fields{
		"user_id":   event.UserID,
		"email":     event.Email,
		"reference": event.Reference,
		"source":    event.Source,
		"amount":    event.Amount,
		"balance":   event.Balance,
	}).Info("Payment received notification")
	return nil
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PaymentReceived(ctx context.Context, event PaymentEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
