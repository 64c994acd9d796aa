package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"ajebo-payments/internal/entity"

	"github.com/sirupsen/logrus"
)

const monnifySignatureHeader = "monnify-signature"

// Monnify reports amounts in naira; the ledger works in kobo.
var monnifyStatusMap = map[string]entity.PaymentStatus{
	"PAID":           entity.PaymentStatusCompleted,
	"OVERPAID":       entity.PaymentStatusCompleted,
	"FAILED":         entity.PaymentStatusFailed,
	"CANCELLED":      entity.PaymentStatusFailed,
	"REVERSED":       entity.PaymentStatusFailed,
	"EXPIRED":        entity.PaymentStatusFailed,
	"ABANDONED":      entity.PaymentStatusFailed,
	"PENDING":        entity.PaymentStatusPending,
	"PARTIALLY_PAID": entity.PaymentStatusPending,
}

type MonnifyGateway struct {
	apiKey       string
	secretKey    string
	contractCode string
	baseURL      string
	client       *http.Client
	logger       *logrus.Logger
}

func NewMonnifyGateway(apiKey, secretKey, contractCode, baseURL string, client *http.Client, logger *logrus.Logger) *MonnifyGateway {
	return &MonnifyGateway{
		apiKey:       apiKey,
		secretKey:    secretKey,
		contractCode: contractCode,
		baseURL:      baseURL,
		client:       client,
		logger:       logger,
	}
}

func (g *MonnifyGateway) Name() string {
	return "monnify"
}

type monnifyEnvelope struct {
	RequestSuccessful bool            `json:"requestSuccessful"`
	ResponseMessage   string          `json:"responseMessage"`
	ResponseBody      json.RawMessage `json:"responseBody"`
}

type monnifyTransaction struct {
	TransactionReference string          `json:"transactionReference"`
	PaymentReference     string          `json:"paymentReference"`
	PaymentStatus        string          `json:"paymentStatus"`
	AmountPaid           float64         `json:"amountPaid"`
	CheckoutURL          string          `json:"checkoutUrl"`
	MetaData             json.RawMessage `json:"metaData"`
}

func (g *MonnifyGateway) Initialize(ctx context.Context, req InitRequest) (*InitResponse, error) {
	token, err := g.login(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"amount":             float64(req.Amount) / 100,
		"customerName":       req.Name,
		"customerEmail":      req.Email,
		"paymentReference":   req.Reference,
		"paymentDescription": "Ajebo camp payment",
		"currencyCode":       "NGN",
		"contractCode":       g.contractCode,
		"redirectUrl":        req.CallbackURL,
		"metaData":           req.Metadata,
	}

	var env monnifyEnvelope
	if err := g.call(ctx, http.MethodPost, "/api/v1/merchant/transactions/init-transaction", token, payload, &env); err != nil {
		return nil, err
	}
	if !env.RequestSuccessful {
		return nil, fmt.Errorf("monnify initialize rejected: %s", env.ResponseMessage)
	}

	var data monnifyTransaction
	if err := json.Unmarshal(env.ResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to decode monnify initialize response: %w", err)
	}

	return &InitResponse{
		PaymentURL:       data.CheckoutURL,
		GatewayReference: data.TransactionReference,
	}, nil
}

func (g *MonnifyGateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	token, err := g.login(ctx)
	if err != nil {
		return nil, err
	}

	var env monnifyEnvelope
	path := "/api/v1/merchant/transactions/query?paymentReference=" + reference
	if err := g.call(ctx, http.MethodGet, path, token, nil, &env); err != nil {
		return nil, err
	}
	if !env.RequestSuccessful {
		return nil, fmt.Errorf("monnify verify rejected: %s", env.ResponseMessage)
	}

	var data monnifyTransaction
	if err := json.Unmarshal(env.ResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to decode monnify verify response: %w", err)
	}

	return &VerifyResult{
		Reference:        data.PaymentReference,
		GatewayReference: data.TransactionReference,
		Status:           normalizeStatus(monnifyStatusMap, data.PaymentStatus),
		Amount:           int64(math.Round(data.AmountPaid * 100)),
		RawPayload:       env.ResponseBody,
	}, nil
}

// VerifySignature checks the hex HMAC-SHA512 of the raw body against the
// monnify-signature header value, keyed with the client secret.
func (g *MonnifyGateway) VerifySignature(body []byte, signature string) bool {
	if g.secretKey == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(g.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

type monnifyWebhookPayload struct {
	EventType string             `json:"eventType"`
	EventData monnifyTransaction `json:"eventData"`
}

func (g *MonnifyGateway) ParseWebhook(body []byte) (*WebhookEvent, error) {
	var payload monnifyWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse monnify webhook: %w", err)
	}
	if payload.EventData.PaymentReference == "" {
		return nil, fmt.Errorf("monnify webhook has no payment reference")
	}

	event := &WebhookEvent{
		Reference:        payload.EventData.PaymentReference,
		GatewayReference: payload.EventData.TransactionReference,
		Status:           normalizeStatus(monnifyStatusMap, payload.EventData.PaymentStatus),
		Amount:           int64(math.Round(payload.EventData.AmountPaid * 100)),
		RawPayload:       body,
	}
	applyTopupMetadata(event, payload.EventData.MetaData)

	return event, nil
}

type monnifyLoginResponse struct {
	AccessToken string `json:"accessToken"`
}

func (g *MonnifyGateway) login(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/v1/auth/login", bytes.NewReader(nil))
	if err != nil {
		return "", fmt.Errorf("failed to build monnify login request: %w", err)
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(g.apiKey + ":" + g.secretKey))
	req.Header.Set("Authorization", "Basic "+credentials)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).Warn("Monnify login failed")
		return "", fmt.Errorf("monnify login: %w", ErrUnavailable)
	}
	defer resp.Body.Close()

	var env monnifyEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("failed to decode monnify login response: %w", err)
	}
	if !env.RequestSuccessful {
		return "", fmt.Errorf("monnify login rejected: %s", env.ResponseMessage)
	}

	var body monnifyLoginResponse
	if err := json.Unmarshal(env.ResponseBody, &body); err != nil {
		return "", fmt.Errorf("failed to decode monnify access token: %w", err)
	}

	return body.AccessToken, nil
}

func (g *MonnifyGateway) call(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode monnify request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build monnify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithError(err).WithField("path", path).Warn("Monnify call failed")
		return fmt.Errorf("monnify %s %s: %w", method, path, ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("monnify %s %s returned %d: %w", method, path, resp.StatusCode, ErrUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode monnify response: %w", err)
	}

	return nil
}
