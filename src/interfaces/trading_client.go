package interfaces

import (
	"context"

	"drift-observer/src/models"
)

// -----------------------------------------------------------------------------
// ITradingClient is the externally-owned protocol client. All methods submit
// to (or read from) the chain through the gateway; this application never
// builds transactions itself.
// -----------------------------------------------------------------------------

type ITradingClient interface {

	// PlaceOrder submits one order and returns the transaction signature.
	PlaceOrder(ctx context.Context, params models.MOrderParams) (string, error)

	// -----------------------------------------------------------------------------

	// PlaceOrders submits several orders as a single transaction.
	PlaceOrders(ctx context.Context, params []models.MOrderParams) (string, error)

	// -----------------------------------------------------------------------------

	// Deposit moves amount (fixed-point string) of the given collateral
	// market from the associated token account into the subaccount.
	Deposit(ctx context.Context, amount string, marketIndex int, associatedTokenAccount string, subAccountID uint16, reduceOnly bool) (string, error)

	// -----------------------------------------------------------------------------

	// Withdraw moves amount out of the subaccount to the associated token
	// account.
	Withdraw(ctx context.Context, amount string, marketIndex int, associatedTokenAccount string, subAccountID uint16, reduceOnly bool) (string, error)

	// -----------------------------------------------------------------------------

	// GetAssociatedTokenAccount resolves the wallet's token account for a
	// collateral market.
	GetAssociatedTokenAccount(ctx context.Context, marketIndex int) (string, error)

	// -----------------------------------------------------------------------------

	// UserAccountExists reports whether the wallet's user account is
	// initialized on chain.
	UserAccountExists(ctx context.Context) (bool, error)

	// -----------------------------------------------------------------------------

	// UserStatsAccountExists reports whether the wallet's stats account is
	// initialized on chain.
	UserStatsAccountExists(ctx context.Context) (bool, error)

	// -----------------------------------------------------------------------------

	// InitializeUserAccount creates the user (and stats) account. One-time
	// bootstrap required by the protocol before the first deposit.
	InitializeUserAccount(ctx context.Context, subAccountID uint16, name string) (string, error)

	// -----------------------------------------------------------------------------

	// Subscribe attaches the client to its freshly created user account.
	Subscribe(ctx context.Context) error
}
