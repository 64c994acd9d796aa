package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"ajebo-payments/internal/entity"
)

// ErrUnavailable wraps failed or timed-out gateway calls. The payment stays
// pending; callers retry verification later.
var ErrUnavailable = errors.New("gateway unavailable")

type InitRequest struct {
	Email       string
	Name        string
	Amount      int64 // minor units
	Reference   string
	CallbackURL string
	Metadata    map[string]interface{}
}

type InitResponse struct {
	PaymentURL       string
	GatewayReference string
}

type VerifyResult struct {
	Reference        string
	GatewayReference string
	Status           entity.PaymentStatus
	Amount           int64
	RawPayload       json.RawMessage
}

// WebhookEvent is a gateway callback after signature verification and status
// normalization. Wallet top-up markers come from the metadata the initiate
// call planted on the gateway side.
type WebhookEvent struct {
	Reference        string
	GatewayReference string
	Status           entity.PaymentStatus
	Amount           int64
	WalletTopup      bool
	UserID           string
	Email            string
	Name             string
	RawPayload       json.RawMessage
}

// Gateway is the contract every payment provider adapter implements.
// Adapters are stateless: they translate, sign, and verify, nothing else.
type Gateway interface {
	Name() string
	Initialize(ctx context.Context, req InitRequest) (*InitResponse, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
	VerifySignature(body []byte, signature string) bool
	ParseWebhook(body []byte) (*WebhookEvent, error)
}

// normalizeStatus maps one gateway's status vocabulary onto the canonical
// set. Anything unrecognized is pending; success is never assumed.
func normalizeStatus(mapping map[string]entity.PaymentStatus, raw string) entity.PaymentStatus {
	if status, ok := mapping[raw]; ok {
		return status
	}
	return entity.PaymentStatusPending
}

// applyTopupMetadata reads the wallet top-up markers out of the metadata
// object the initiate call planted on the gateway side. Gateways echo
// metadata back loosely typed, so booleans may come back as strings.
func applyTopupMetadata(event *WebhookEvent, raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return
	}

	switch v := meta["wallet_topup"].(type) {
	case bool:
		event.WalletTopup = v
	case string:
		event.WalletTopup = v == "true" || v == "1"
	}
	if v, ok := meta["user_id"].(string); ok {
		event.UserID = v
	}
	if v, ok := meta["email"].(string); ok {
		event.Email = v
	}
	if v, ok := meta["name"].(string); ok {
		event.Name = v
	}
}
