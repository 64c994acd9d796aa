package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ajebo-payments/internal/entity"
	"ajebo-payments/internal/gateway"

	"github.com/stretchr/testify/assert"
)

func TestMonnifyVerifySignature(t *testing.T) {
	g := gateway.NewMonnifyGateway("api-key", "client-secret", "CC123", "http://unused", http.DefaultClient, testLogger())

	body := []byte(`{"eventType":"SUCCESSFUL_TRANSACTION","eventData":{"paymentReference":"ref_abc"}}`)

	assert.True(t, g.VerifySignature(body, signSHA512("client-secret", body)))
	assert.False(t, g.VerifySignature(body, signSHA512("api-key", body)))
	assert.False(t, g.VerifySignature(body, ""))
}

func TestMonnifyParseWebhook_StatusNormalizationAndKobo(t *testing.T) {
	g := gateway.NewMonnifyGateway("api-key", "client-secret", "CC123", "http://unused", http.DefaultClient, testLogger())

	cases := []struct {
		raw  string
		want entity.PaymentStatus
	}{
		{"PAID", entity.PaymentStatusCompleted},
		{"OVERPAID", entity.PaymentStatusCompleted},
		{"FAILED", entity.PaymentStatusFailed},
		{"CANCELLED", entity.PaymentStatusFailed},
		{"EXPIRED", entity.PaymentStatusFailed},
		{"PENDING", entity.PaymentStatusPending},
		{"PARTIALLY_PAID", entity.PaymentStatusPending},
		{"SOMETHING_NEW", entity.PaymentStatusPending},
	}

	for _, tc := range cases {
		body := []byte(`{"eventType":"SUCCESSFUL_TRANSACTION","eventData":{"transactionReference":"MNFY|001","paymentReference":"ref_abc","paymentStatus":"` + tc.raw + `","amountPaid":2500.50}}`)
		event, err := g.ParseWebhook(body)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, event.Status, "status %q", tc.raw)
		// naira to kobo
		assert.Equal(t, int64(250050), event.Amount)
	}
}

func TestMonnifyParseWebhook_TopupMetadata(t *testing.T) {
	g := gateway.NewMonnifyGateway("api-key", "client-secret", "CC123", "http://unused", http.DefaultClient, testLogger())

	body := []byte(`{"eventType":"SUCCESSFUL_TRANSACTION","eventData":{"transactionReference":"MNFY|001","paymentReference":"ref_abc","paymentStatus":"PAID","amountPaid":100,"metaData":{"wallet_topup":"true","user_id":"user-42","name":"Guest"}}}`)

	event, err := g.ParseWebhook(body)

	assert.NoError(t, err)
	assert.True(t, event.WalletTopup)
	assert.Equal(t, "user-42", event.UserID)
	assert.Equal(t, "Guest", event.Name)
}

func TestMonnifyParseWebhook_MissingReference(t *testing.T) {
	g := gateway.NewMonnifyGateway("api-key", "client-secret", "CC123", "http://unused", http.DefaultClient, testLogger())

	_, err := g.ParseWebhook([]byte(`{"eventType":"SUCCESSFUL_TRANSACTION","eventData":{"paymentStatus":"PAID"}}`))

	assert.Error(t, err)
}

func TestMonnifyInitialize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/auth/login":
			assert.NotEmpty(t, r.Header.Get("Authorization"))
			w.Write([]byte(`{"requestSuccessful":true,"responseMessage":"ok","responseBody":{"accessToken":"tok_123"}}`))
		case "/api/v1/merchant/transactions/init-transaction":
			assert.Equal(t, "Bearer tok_123", r.Header.Get("Authorization"))
			w.Write([]byte(`{"requestSuccessful":true,"responseMessage":"ok","responseBody":{"transactionReference":"MNFY|001","paymentReference":"ref_abc","checkoutUrl":"https://sdk.monnify.com/checkout/abc"}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	g := gateway.NewMonnifyGateway("api-key", "client-secret", "CC123", server.URL, server.Client(), testLogger())

	resp, err := g.Initialize(context.Background(), gateway.InitRequest{
		Email:     "guest@example.com",
		Name:      "Guest",
		Amount:    250000,
		Reference: "ref_abc",
	})

	assert.NoError(t, err)
	assert.Equal(t, "https://sdk.monnify.com/checkout/abc", resp.PaymentURL)
	assert.Equal(t, "MNFY|001", resp.GatewayReference)
}

func TestMonnifyVerify_AmountConvertedToKobo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/v1/auth/login" {
			w.Write([]byte(`{"requestSuccessful":true,"responseMessage":"ok","responseBody":{"accessToken":"tok_123"}}`))
			return
		}
		assert.Equal(t, "ref_abc", r.URL.Query().Get("paymentReference"))
		w.Write([]byte(`{"requestSuccessful":true,"responseMessage":"ok","responseBody":{"transactionReference":"MNFY|001","paymentReference":"ref_abc","paymentStatus":"PAID","amountPaid":1500.75}}`))
	}))
	defer server.Close()

	g := gateway.NewMonnifyGateway("api-key", "client-secret", "CC123", server.URL, server.Client(), testLogger())

	result, err := g.Verify(context.Background(), "ref_abc")

	assert.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCompleted, result.Status)
	assert.Equal(t, int64(150075), result.Amount)
}

func TestMonnifyVerify_LoginFailureIsUnavailable(t *testing.T) {
	g := gateway.NewMonnifyGateway("api-key", "client-secret", "CC123", "http://127.0.0.1:1", http.DefaultClient, testLogger())

	_, err := g.Verify(context.Background(), "ref_abc")

	assert.ErrorIs(t, err, gateway.ErrUnavailable)
}
