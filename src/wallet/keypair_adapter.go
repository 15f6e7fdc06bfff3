package wallet

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mr-tron/base58"
)

// -----------------------------------------------------------------------------
// KeypairAdapter signs with a local ed25519 keypair file (base58-encoded
// secret key). It is the server-side stand-in for a browser wallet: same
// connect/sign/disconnect contract, keys stay on this machine.
// -----------------------------------------------------------------------------

type KeypairAdapter struct {
	name        string
	keypairPath string

	mu        sync.Mutex
	secretKey ed25519.PrivateKey
	connected bool
}

// -----------------------------------------------------------------------------

func NewKeypairAdapter(name, keypairPath string) *KeypairAdapter {
	return &KeypairAdapter{
		name:        name,
		keypairPath: keypairPath,
	}
}

// -----------------------------------------------------------------------------

func (k *KeypairAdapter) Name() string {
	return k.name
}

// -----------------------------------------------------------------------------

// Connect loads the keypair and returns the base58 public key.
func (k *KeypairAdapter) Connect(ctx context.Context) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.connected {
		data, err := os.ReadFile(k.keypairPath)
		if err != nil {
			return "", fmt.Errorf("failed to read keypair file: %w", err)
		}

		secretBytes, err := base58.Decode(strings.TrimSpace(string(data)))
		if err != nil {
			return "", fmt.Errorf("keypair file is not valid base58: %w", err)
		}

		switch len(secretBytes) {
		case ed25519.PrivateKeySize:
			k.secretKey = ed25519.PrivateKey(secretBytes)
		case ed25519.SeedSize:
			k.secretKey = ed25519.NewKeyFromSeed(secretBytes)
		default:
			return "", fmt.Errorf("keypair must be %d or %d bytes, got %d", ed25519.SeedSize, ed25519.PrivateKeySize, len(secretBytes))
		}
		k.connected = true
	}

	publicKey := k.secretKey.Public().(ed25519.PublicKey)
	return base58.Encode(publicKey), nil
}

// -----------------------------------------------------------------------------

func (k *KeypairAdapter) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.connected {
		return nil, fmt.Errorf("adapter %s is not connected", k.name)
	}
	return ed25519.Sign(k.secretKey, message), nil
}

// -----------------------------------------------------------------------------

// Disconnect drops the loaded key material.
func (k *KeypairAdapter) Disconnect(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.secretKey = nil
	k.connected = false
	return nil
}
