package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Webhook headers set by Shopify on every delivery.
const (
	HeaderHMAC       = "X-Shopify-Hmac-Sha256"
	HeaderShopDomain = "X-Shopify-Shop-Domain"
)

// VerifyWebhookSignature checks the base64 HMAC-SHA256 signature Shopify
// computes over the raw request body. The raw bytes must be used as
// delivered; re-serialising a parsed payload is not byte-stable. The
// comparison is constant-time.
func VerifyWebhookSignature(rawBody []byte, signatureHeader string, secret []byte) bool {
	if signatureHeader == "" {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}
