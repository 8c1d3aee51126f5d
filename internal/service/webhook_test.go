package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func signStripe(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyStripeSignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"id":"evt_1"}`)
	sig := signStripe(secret, "1693000000", body)
	header := fmt.Sprintf("t=1693000000,v1=%s", sig)

	require.NoError(t, verifyStripeSignature(secret, header, body))
}

func TestVerifyStripeSignatureMultipleV1(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"id":"evt_1"}`)
	sig := signStripe(secret, "1693000000", body)
	header := fmt.Sprintf("t=1693000000,v1=deadbeef,v1=%s", sig)

	require.NoError(t, verifyStripeSignature(secret, header, body))
}

func TestVerifyStripeSignatureRejectsTampering(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"id":"evt_1"}`)
	sig := signStripe(secret, "1693000000", body)
	header := fmt.Sprintf("t=1693000000,v1=%s", sig)

	require.Error(t, verifyStripeSignature(secret, header, []byte(`{"id":"evt_2"}`)))
	require.Error(t, verifyStripeSignature("whsec_other", header, body))
	require.Error(t, verifyStripeSignature(secret, "", body))
	require.Error(t, verifyStripeSignature(secret, "t=1693000000", body))
}
