package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"github.com/useinsider/go-pkg/inslogger"
)

const SignatureHeader = "X-Signature"

// ErrInvalidSignature covers a missing header, an unconfigured secret and a
// mismatch alike so callers cannot tell them apart.
var ErrInvalidSignature = errors.New("invalid signature")

// Compute returns the hex encoded HMAC-SHA256 of body keyed by secret.
func Compute(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the digest and compares it in constant time.
func Verify(secret string, body []byte, signature string) bool {
	expected := Compute(secret, body)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

type SignatureVerifier interface {
	Verify(body []byte, signature string) error
}

type signatureVerifier struct {
	secret string
	logger inslogger.Interface
}

func NewSignatureVerifier(secret string, logger inslogger.Interface) SignatureVerifier {
	return &signatureVerifier{
		secret: secret,
		logger: logger,
	}
}

func (v *signatureVerifier) Verify(body []byte, signature string) error {
	if signature == "" {
		v.logger.Warn("Webhook request missing X-Signature header")
		return ErrInvalidSignature
	}
	if v.secret == "" {
		v.logger.Errorf("WEBHOOK_SECRET environment variable not configured")
		return ErrInvalidSignature
	}
	if !Verify(v.secret, body, signature) {
		v.logger.Warnf("Webhook signature verification failed, received signature: %s...", prefix(signature, 16))
		return ErrInvalidSignature
	}
	return nil
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
