package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ajebo-payments/internal/commons/response"
	"ajebo-payments/internal/entity"
	"ajebo-payments/internal/gateway"
	"ajebo-payments/internal/params"
	"ajebo-payments/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// maxReconcileAttempts bounds retries of the post-verification webhook work
// (store update + wallet credit). After that the webhook is still
// acknowledged and the failure logged for manual reconciliation.
const maxReconcileAttempts = 3

// PaymentUsecase drives payment initiation, the client verify path, and
// gateway webhooks. Both confirmation paths funnel into the ledger's
// idempotent credit, so they are safe to race against each other.
type PaymentUsecase interface {
	InitiatePayment(ctx context.Context, req *params.InitiatePaymentRequest) (*params.InitiatePaymentResponse, *response.CustomError)
	VerifyPayment(ctx context.Context, gatewayName, reference string) (*params.PaymentStatusResponse, *response.CustomError)
	HandleWebhook(ctx context.Context, gatewayName string, rawBody []byte, signature string) (*params.WebhookAck, *response.CustomError)
	ListTransactions(ctx context.Context, limit int, status entity.PaymentStatus) (*params.TransactionListResponse, *response.CustomError)
}

type PaymentUsecaseImpl struct {
	gateways map[string]gateway.Gateway
	txRepo   repository.TransactionRepository
	ledger   LedgerUsecase
	logger   *logrus.Logger
}

func NewPaymentUsecase(gateways map[string]gateway.Gateway, txRepo repository.TransactionRepository, ledger LedgerUsecase, logger *logrus.Logger) PaymentUsecase {
	return &PaymentUsecaseImpl{
		gateways: gateways,
		txRepo:   txRepo,
		ledger:   ledger,
		logger:   logger,
	}
}

// transactionDetails is the free-form payload stored on a payment
// transaction. The wallet top-up markers let the verify path credit without
// depending on gateway-echoed metadata.
type transactionDetails struct {
	Category    string `json:"category,omitempty"`
	WalletTopup bool   `json:"wallet_topup,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Name        string `json:"name,omitempty"`
	PaymentURL  string `json:"payment_url,omitempty"`
}

func (u *PaymentUsecaseImpl) InitiatePayment(ctx context.Context, req *params.InitiatePaymentRequest) (*params.InitiatePaymentResponse, *response.CustomError) {
	gw, ok := u.gateways[req.Gateway]
	if !ok {
		return nil, response.BadRequestError("unknown payment gateway")
	}

	reference := req.Reference
	if reference == "" {
		reference = "ref_" + uuid.NewString()
	}

	details := transactionDetails{
		Category:    req.Category,
		WalletTopup: req.WalletTopup,
		UserID:      req.UserID,
		Name:        req.Name,
	}

	metadata := map[string]interface{}{
		"category": req.Category,
	}
	if req.WalletTopup {
		metadata["wallet_topup"] = true
		metadata["user_id"] = req.UserID
		metadata["email"] = req.Email
		metadata["name"] = req.Name
	}

	txn := &entity.PaymentTransaction{
		Reference: reference,
		Gateway:   gw.Name(),
		Category:  req.Category,
		Amount:    req.Amount,
		Status:    entity.PaymentStatusPending,
		Email:     req.Email,
		Name:      req.Name,
		Phone:     req.Phone,
		CreatedAt: time.Now(),
	}
	if encoded, err := json.Marshal(details); err == nil {
		txn.Details = string(encoded)
	}

	if err := u.txRepo.Upsert(ctx, txn); err != nil {
		u.logger.WithError(err).WithField("reference", reference).Error("Failed to record payment transaction")
		return nil, response.RepositoryError("failed to record payment transaction")
	}

	initResp, err := gw.Initialize(ctx, gateway.InitRequest{
		Email:       req.Email,
		Name:        req.Name,
		Amount:      req.Amount,
		Reference:   reference,
		CallbackURL: req.CallbackURL,
		Metadata:    metadata,
	})
	if err != nil {
		if errors.Is(err, gateway.ErrUnavailable) {
			u.logger.WithError(err).WithField("reference", reference).Warn("Gateway unavailable during initiation")
			return nil, response.GatewayError("payment gateway unavailable, retry verification later")
		}
		u.logger.WithError(err).WithField("reference", reference).Error("Failed to initialize payment")
		return nil, response.GeneralError("failed to initialize payment")
	}

	details.PaymentURL = initResp.PaymentURL
	if encoded, err := json.Marshal(details); err == nil {
		txn.Details = string(encoded)
	}
	txn.GatewayReference = initResp.GatewayReference
	if err := u.txRepo.Upsert(ctx, txn); err != nil {
		u.logger.WithError(err).WithField("reference", reference).Warn("Failed to store gateway reference after initiation")
	}

	return &params.InitiatePaymentResponse{
		Reference:        reference,
		Gateway:          gw.Name(),
		PaymentURL:       initResp.PaymentURL,
		GatewayReference: initResp.GatewayReference,
		Amount:           req.Amount,
	}, nil
}

func (u *PaymentUsecaseImpl) VerifyPayment(ctx context.Context, gatewayName, reference string) (*params.PaymentStatusResponse, *response.CustomError) {
	gw, ok := u.gateways[gatewayName]
	if !ok {
		return nil, response.BadRequestError("unknown payment gateway")
	}

	result, err := gw.Verify(ctx, reference)
	if err != nil {
		if errors.Is(err, gateway.ErrUnavailable) {
			return nil, response.GatewayError("payment gateway unavailable, retry verification later")
		}
		u.logger.WithError(err).WithField("reference", reference).Error("Failed to verify payment")
		return nil, response.GeneralError("failed to verify payment")
	}

	event := &gateway.WebhookEvent{
		Reference:        result.Reference,
		GatewayReference: result.GatewayReference,
		Status:           result.Status,
		Amount:           result.Amount,
		RawPayload:       result.RawPayload,
	}
	u.applyStoredTopupDetails(ctx, event)

	credited, err := u.reconcile(ctx, gw.Name(), event)
	if err != nil {
		u.logger.WithError(err).WithField("reference", reference).Error("Failed to reconcile verified payment")
		return nil, response.RepositoryError("failed to reconcile payment")
	}

	return &params.PaymentStatusResponse{
		Reference:        result.Reference,
		Gateway:          gw.Name(),
		Status:           result.Status,
		Amount:           result.Amount,
		GatewayReference: result.GatewayReference,
		WalletCredited:   credited,
	}, nil
}

func (u *PaymentUsecaseImpl) HandleWebhook(ctx context.Context, gatewayName string, rawBody []byte, signature string) (*params.WebhookAck, *response.CustomError) {
	gw, ok := u.gateways[gatewayName]
	if !ok {
		return nil, response.BadRequestError("unknown payment gateway")
	}

	// Nothing is parsed or written before the signature checks out.
	if !gw.VerifySignature(rawBody, signature) {
		u.logger.WithField("gateway", gatewayName).Warn("Webhook rejected: invalid signature")
		return &params.WebhookAck{
			Accepted: false,
			Message:  "invalid signature",
		}, nil
	}

	event, err := gw.ParseWebhook(rawBody)
	if err != nil {
		u.logger.WithError(err).WithField("gateway", gatewayName).Warn("Webhook payload unprocessable")
		return nil, response.BadRequestError("unprocessable webhook payload")
	}

	if !event.WalletTopup {
		u.applyStoredTopupDetails(ctx, event)
	}

	var lastErr error
	for attempt := 1; attempt <= maxReconcileAttempts; attempt++ {
		if _, lastErr = u.reconcile(ctx, gw.Name(), event); lastErr == nil {
			break
		}
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	if lastErr != nil {
		// Acknowledge anyway so the gateway stops retrying a condition it
		// cannot fix; the verify path recovers missed updates.
		u.logger.WithError(lastErr).WithFields(logrus.Fields{
			"gateway":   gatewayName,
			"reference": event.Reference,
		}).Error("Webhook reconciliation failed after retries, needs manual review")
	}

	return &params.WebhookAck{
		Accepted:  true,
		Reference: event.Reference,
	}, nil
}

// reconcile applies one normalized gateway event: update the transaction
// record, then credit the wallet when the event confirms a top-up. The
// ledger's reference idempotency makes this safe for replays and for the
// webhook/verify race.
func (u *PaymentUsecaseImpl) reconcile(ctx context.Context, gatewayName string, event *gateway.WebhookEvent) (bool, error) {
	existing, err := u.txRepo.FindByReference(ctx, event.Reference)
	switch {
	case err == nil:
		if updErr := u.txRepo.UpdateStatus(ctx, event.Reference, event.Status, event.GatewayReference); updErr != nil {
			if errors.Is(updErr, repository.ErrTerminalStatus) {
				// Conflicting terminal report. The stored record wins and
				// the ledger stays untouched.
				return false, nil
			}
			return false, updErr
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Webhook arrived for a payment initiated elsewhere; record it.
		txn := &entity.PaymentTransaction{
			Reference:        event.Reference,
			Gateway:          gatewayName,
			Amount:           event.Amount,
			Status:           event.Status,
			Email:            event.Email,
			Name:             event.Name,
			GatewayReference: event.GatewayReference,
			Details:          string(event.RawPayload),
			CreatedAt:        time.Now(),
		}
		if upErr := u.txRepo.Upsert(ctx, txn); upErr != nil {
			return false, upErr
		}
	default:
		return false, err
	}

	if event.Status != entity.PaymentStatusCompleted || !event.WalletTopup || event.UserID == "" {
		return false, nil
	}

	email := event.Email
	name := event.Name
	if existing != nil {
		if email == "" {
			email = existing.Email
		}
		if name == "" {
			name = existing.Name
		}
	}

	if _, custErr := u.ledger.Credit(ctx, &params.CreditRequest{
		UserID:      event.UserID,
		Email:       email,
		Name:        name,
		Amount:      event.Amount,
		Reference:   event.Reference,
		Source:      gatewayName,
		Description: "Wallet top-up via " + gatewayName,
		Metadata:    string(event.RawPayload),
		CreatedBy:   "gateway",
	}); custErr != nil {
		return false, custErr
	}

	return true, nil
}

// applyStoredTopupDetails backfills wallet top-up markers from the stored
// transaction record when the gateway payload does not carry them.
func (u *PaymentUsecaseImpl) applyStoredTopupDetails(ctx context.Context, event *gateway.WebhookEvent) {
	txn, err := u.txRepo.FindByReference(ctx, event.Reference)
	if err != nil || txn.Details == "" {
		return
	}

	var details transactionDetails
	if json.Unmarshal([]byte(txn.Details), &details) != nil {
		return
	}
	if details.WalletTopup {
		event.WalletTopup = true
		if event.UserID == "" {
			event.UserID = details.UserID
		}
		if event.Email == "" {
			event.Email = txn.Email
		}
		if event.Name == "" {
			event.Name = details.Name
		}
	}
}

func (u *PaymentUsecaseImpl) ListTransactions(ctx context.Context, limit int, status entity.PaymentStatus) (*params.TransactionListResponse, *response.CustomError) {
	txns, err := u.txRepo.List(ctx, limit, status)
	if err != nil {
		u.logger.WithError(err).Error("Failed to list payment transactions")
		return nil, response.RepositoryError("failed to list payment transactions")
	}

	results := make([]*params.TransactionResponse, len(txns))
	for i, t := range txns {
		results[i] = params.NewTransactionResponse(t)
	}

	return &params.TransactionListResponse{
		Transactions: results,
		Limit:        limit,
	}, nil
}
