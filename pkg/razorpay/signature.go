package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// PaymentSignaturePayload builds the exact byte string the gateway signs for
// checkout callbacks: the order ID and payment ID joined by a pipe.
func PaymentSignaturePayload(orderID, paymentID string) string {
	return orderID + "|" + paymentID
}

// SignPayment computes the hex-encoded HMAC-SHA256 signature for the
// order/payment pair under the given key secret.
func SignPayment(orderID, paymentID, keySecret string) string {
	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(PaymentSignaturePayload(orderID, paymentID)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature reports whether the provided signature matches the
// expected HMAC for the order/payment pair. Comparison is constant time.
func VerifyPaymentSignature(orderID, paymentID, signature, keySecret string) bool {
	if orderID == "" || paymentID == "" || signature == "" || keySecret == "" {
		return false
	}
	expected := SignPayment(orderID, paymentID, keySecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
