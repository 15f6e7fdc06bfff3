package interfaces

import "context"

// -----------------------------------------------------------------------------
// IWalletAdapter is the external wallet collaborator. Only the operations the
// dashboard consumes are modeled: select happens by picking an adapter from
// the registry, then Connect / SignMessage / Disconnect.
// -----------------------------------------------------------------------------

type IWalletAdapter interface {

	// Name returns the adapter's display name (e.g. "Phantom").
	Name() string

	// -----------------------------------------------------------------------------

	// Connect prompts the wallet and returns the base58 public key.
	Connect(ctx context.Context) (string, error)

	// -----------------------------------------------------------------------------

	// SignMessage signs arbitrary bytes with the wallet's key.
	SignMessage(ctx context.Context, message []byte) ([]byte, error)

	// -----------------------------------------------------------------------------

	// Disconnect releases the wallet session.
	Disconnect(ctx context.Context) error
}
