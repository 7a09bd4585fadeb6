package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func signStripePayload(secret, timestamp, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "." + payload))
	return "t=" + timestamp + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyStripeSignature(t *testing.T) {
	secret := "whsec_test"
	payload := `{"type":"checkout.session.completed"}`
	timestamp := "1756500000"
	header := signStripePayload(secret, timestamp, payload)

	assert.NoError(t, verifyStripeSignature([]byte(payload), header, secret))

	// Anything signed must fail once payload, key, or header diverge.
	assert.Error(t, verifyStripeSignature([]byte(payload+" "), header, secret))
	assert.Error(t, verifyStripeSignature([]byte(payload), header, "whsec_other"))
	assert.Error(t, verifyStripeSignature([]byte(payload), "", secret))
	assert.Error(t, verifyStripeSignature([]byte(payload), "t="+timestamp, secret))
	assert.Error(t, verifyStripeSignature([]byte(payload), "v1=deadbeef", secret))

	// Signature computed over a different timestamp than the header claims.
	staleSig := strings.SplitN(signStripePayload(secret, "1756500001", payload), "v1=", 2)[1]
	assert.Error(t, verifyStripeSignature([]byte(payload), "t="+timestamp+",v1="+staleSig, secret))
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	h := NewCheckoutHandler(nil, "whsec_test")
	e := echo.New()

	payload := `{"id":"evt_1","type":"payment_intent.created"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", signStripePayload("whsec_wrong", "1756500000", payload))
	rec := httptest.NewRecorder()

	err := h.StripeWebhook(e.NewContext(req, rec))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStripeWebhookIgnoresOtherEventTypes(t *testing.T) {
	// A nil usecase proves the ignored path never reaches fulfillment.
	h := NewCheckoutHandler(nil, "whsec_test")
	e := echo.New()

	payload := `{"id":"evt_1","type":"payment_intent.created"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/webhook", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", signStripePayload("whsec_test", "1756500000", payload))
	rec := httptest.NewRecorder()

	err := h.StripeWebhook(e.NewContext(req, rec))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
}
