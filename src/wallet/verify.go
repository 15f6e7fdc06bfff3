package wallet

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
)

// -----------------------------------------------------------------------------
// Login-time ownership proof. The wallet signs a nonce message; the signature
// is checked against the base58 public key before the connection is accepted
// as authenticated.
// -----------------------------------------------------------------------------

// VerifySignedMessage verifies an ed25519 signature over message using the
// base58-encoded public key.
func VerifySignedMessage(message string, signature []byte, publicKey string) (bool, error) {
	keyBytes, err := base58.Decode(publicKey)
	if err != nil {
		return false, fmt.Errorf("invalid base58 public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return false, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(keyBytes))
	}
	if len(signature) != ed25519.SignatureSize {
		return false, fmt.Errorf("signature must be %d bytes, got %d", ed25519.SignatureSize, len(signature))
	}

	return ed25519.Verify(ed25519.PublicKey(keyBytes), []byte(message), signature), nil
}

// -----------------------------------------------------------------------------

// GenerateMessage builds the ownership-proof message with a millisecond nonce.
func GenerateMessage() string {
	nonce := time.Now().UnixMilli()
	return fmt.Sprintf("Sign this message to verify ownership. Nonce: %d", nonce)
}

// -----------------------------------------------------------------------------

// Ellipsify shortens long addresses for display ("EPjF..Dt1v").
func Ellipsify(str string, length int) string {
	if len(str) > 30 {
		return str[:length] + ".." + str[len(str)-length:]
	}
	return str
}
