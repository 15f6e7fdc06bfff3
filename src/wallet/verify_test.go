package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Signature verification
// -----------------------------------------------------------------------------

func TestVerifySignedMessageRoundtrip(t *testing.T) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	message := GenerateMessage()
	signature := ed25519.Sign(privateKey, []byte(message))

	ok, err := VerifySignedMessage(message, signature, base58.Encode(publicKey))
	require.NoError(t, err)
	assert.True(t, ok)
}

// -----------------------------------------------------------------------------

func TestVerifySignedMessageWrongKey(t *testing.T) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	otherPublic, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	message := "Sign this message to verify ownership. Nonce: 1"
	signature := ed25519.Sign(privateKey, []byte(message))

	ok, err := VerifySignedMessage(message, signature, base58.Encode(otherPublic))
	require.NoError(t, err)
	assert.False(t, ok)
}

// -----------------------------------------------------------------------------

func TestVerifySignedMessageRejectsMalformedInput(t *testing.T) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signature := ed25519.Sign(privateKey, []byte("msg"))

	_, err = VerifySignedMessage("msg", signature, "not!base58")
	assert.Error(t, err)

	// Valid base58 but too short to be a public key.
	_, err = VerifySignedMessage("msg", signature, base58.Encode([]byte{1, 2, 3}))
	assert.Error(t, err)

	_, err = VerifySignedMessage("msg", signature[:10], base58.Encode(publicKey))
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestGenerateMessageCarriesNonce(t *testing.T) {
	message := GenerateMessage()
	assert.True(t, strings.HasPrefix(message, "Sign this message to verify ownership. Nonce: "))
}

// -----------------------------------------------------------------------------

func TestEllipsify(t *testing.T) {
	address := "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	assert.Equal(t, "EPjF..Dt1v", Ellipsify(address, 4))
	assert.Equal(t, "short-address", Ellipsify("short-address", 4))
}

// -----------------------------------------------------------------------------
// Keypair adapter
// -----------------------------------------------------------------------------

func writeKeypairFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keypair.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

// -----------------------------------------------------------------------------

func TestKeypairAdapterConnectAndSign(t *testing.T) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	path := writeKeypairFile(t, base58.Encode(privateKey)+"\n")

	adapter := NewKeypairAdapter("Local", path)
	assert.Equal(t, "Local", adapter.Name())

	got, err := adapter.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, base58.Encode(publicKey), got)

	message := []byte("ownership check")
	signature, err := adapter.SignMessage(context.Background(), message)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(publicKey, message, signature))
}

// -----------------------------------------------------------------------------

// Seed-only files (32 bytes) are accepted alongside full 64-byte secret keys.
func TestKeypairAdapterAcceptsSeed(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	_, err := rand.Read(seed)
	require.NoError(t, err)
	path := writeKeypairFile(t, base58.Encode(seed))

	adapter := NewKeypairAdapter("Local", path)
	got, err := adapter.Connect(context.Background())
	require.NoError(t, err)

	expected := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	assert.Equal(t, base58.Encode(expected), got)
}

// -----------------------------------------------------------------------------

func TestKeypairAdapterRejectsBadFiles(t *testing.T) {
	adapter := NewKeypairAdapter("Local", filepath.Join(t.TempDir(), "missing.txt"))
	_, err := adapter.Connect(context.Background())
	assert.Error(t, err)

	adapter = NewKeypairAdapter("Local", writeKeypairFile(t, "zero 0 is not base58"))
	_, err = adapter.Connect(context.Background())
	assert.Error(t, err)

	adapter = NewKeypairAdapter("Local", writeKeypairFile(t, base58.Encode([]byte{1, 2, 3})))
	_, err = adapter.Connect(context.Background())
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestKeypairAdapterSignRequiresConnect(t *testing.T) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	path := writeKeypairFile(t, base58.Encode(privateKey))

	adapter := NewKeypairAdapter("Local", path)
	_, err = adapter.SignMessage(context.Background(), []byte("msg"))
	assert.Error(t, err)

	_, err = adapter.Connect(context.Background())
	require.NoError(t, err)
	require.NoError(t, adapter.Disconnect(context.Background()))

	_, err = adapter.SignMessage(context.Background(), []byte("msg"))
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

func TestRegistryOrderAndSelect(t *testing.T) {
	registry := NewRegistry()
	registry.Register(NewKeypairAdapter("Phantom", "a.txt"))
	registry.Register(NewKeypairAdapter("Solflare", "b.txt"))
	registry.Register(NewKeypairAdapter("Phantom", "c.txt"))

	assert.Equal(t, []string{"Phantom", "Solflare"}, registry.Names())

	adapter, err := registry.Select("Solflare")
	require.NoError(t, err)
	assert.Equal(t, "Solflare", adapter.Name())

	_, err = registry.Select("Backpack")
	assert.Error(t, err)
}
