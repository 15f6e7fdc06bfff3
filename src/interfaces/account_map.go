package interfaces

import (
	"context"
	"sync"

	"drift-observer/src/models"
)

// -----------------------------------------------------------------------------
// IAccountMap is the external SDK's live-subscribed registry of on-chain
// account records for the wallet under view. The map itself is owned by the
// gateway; this application only enumerates it and reads records.
// -----------------------------------------------------------------------------

type IAccountMap interface {

	// Entries returns the account entries in stable iteration order.
	// Entries may be uninitialized; reading their record can fail.
	Entries() []IAccountEntry

	// -----------------------------------------------------------------------------

	// Subscribe starts the live subscription. Every change notification is
	// pushed to updates. Cancelling ctx stops the subscription; wg is done
	// once the subscription has fully shut down.
	Subscribe(ctx context.Context, updates chan<- struct{}, wg *sync.WaitGroup) error

	// -----------------------------------------------------------------------------

	// Stop terminates the subscription (manual stop).
	Stop() error
}

// -----------------------------------------------------------------------------
// IAccountEntry is one slot of the account map.
// -----------------------------------------------------------------------------

type IAccountEntry interface {

	// Record reads the decoded user account. Returns an error when the slot
	// is missing or cannot be decoded.
	Record() (*models.MUserAccount, error)
}
