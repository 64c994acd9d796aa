package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"ajebo-payments/internal/entity"

	"github.com/sirupsen/logrus"
)

const paystackSignatureHeader = "x-paystack-signature"

// paystackStatusMap is the closed mapping from Paystack's transaction status
// vocabulary to the canonical states. Unlisted statuses stay pending.
var paystackStatusMap = map[string]entity.PaymentStatus{
	"success":   entity.PaymentStatusCompleted,
	"failed":    entity.PaymentStatusFailed,
	"abandoned": entity.PaymentStatusFailed,
	"reversed":  entity.PaymentStatusFailed,
	"ongoing":   entity.PaymentStatusPending,
	"pending":   entity.PaymentStatusPending,
	"queued":    entity.PaymentStatusPending,
}

type PaystackGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
	logger    *logrus.Logger
}

func NewPaystackGateway(secretKey, baseURL string, client *http.Client, logger *logrus.Logger) *PaystackGateway {
	return &PaystackGateway{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    client,
		logger:    logger,
	}
}

func (g *PaystackGateway) Name() string {
	return "paystack"
}

type paystackInitPayload struct {
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"`
	Reference   string                 `json:"reference"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type paystackTransaction struct {
	ID        int64           `json:"id"`
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    int64           `json:"amount"`
	AuthURL   string          `json:"authorization_url"`
	Metadata  json.RawMessage `json:"metadata"`
}

func (g *PaystackGateway) Initialize(ctx context.Context, req InitRequest) (*InitResponse, error) {
	payload := paystackInitPayload{
		Email:       req.Email,
		Amount:      req.Amount,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	}

	var env paystackEnvelope
	if err := g.call(ctx, http.MethodPost, "/transaction/initialize", payload, &env); err != nil {
		return nil, err
	}
	if !env.Status {
		return nil, fmt.Errorf("paystack initialize rejected: %s", env.Message)
	}

	var data paystackTransaction
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode paystack initialize response: %w", err)
	}

	return &InitResponse{
		PaymentURL:       data.AuthURL,
		GatewayReference: data.Reference,
	}, nil
}

func (g *PaystackGateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	var env paystackEnvelope
	if err := g.call(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &env); err != nil {
		return nil, err
	}
	if !env.Status {
		return nil, fmt.Errorf("paystack verify rejected: %s", env.Message)
	}

	var data paystackTransaction
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to decode paystack verify response: %w", err)
	}

	return &VerifyResult{
		Reference:        data.Reference,
		GatewayReference: fmt.Sprintf("%d", data.ID),
		Status:           normalizeStatus(paystackStatusMap, data.Status),
		Amount:           data.Amount,
		RawPayload:       env.Data,
	}, nil
}

// VerifySignature checks the hex HMAC-SHA512 of the raw body against the
// x-paystack-signature header value. An unconfigured secret always fails.
func (g *PaystackGateway) VerifySignature(body []byte, signature string) bool {
	if g.secretKey == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(g.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

type paystackWebhookPayload struct {
	Event string              `json:"event"`
	Data  paystackTransaction `json:"data"`
}

func (g *PaystackGateway) ParseWebhook(body []byte) (*WebhookEvent, error) {
	var payload paystackWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse paystack webhook: %w", err)
	}
	if payload.Data.Reference == "" {
		return nil, fmt.Errorf("paystack webhook has no reference")
	}

	event := &WebhookEvent{
		Reference:        payload.Data.Reference,
		GatewayReference: fmt.Sprintf("%d", payload.Data.ID),
		Status:           normalizeStatus(paystackStatusMap, payload.Data.Status),
		Amount:           payload.Data.Amount,
		RawPayload:       body,
	}
	applyTopupMetadata(event, payload.Data.Metadata)

	return event, nil
}

func (g *PaystackGateway) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode paystack request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build paystack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).WithField("path", path).Warn("Paystack call failed")
		return fmt.Errorf("paystack %s %s: %w", method, path, ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("paystack %s %s returned %d: %w", method, path, resp.StatusCode, ErrUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode paystack response: %w", err)
	}

	return nil
}
