package interfaces

import "drift-observer/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveTransaction records one submitted (or failed) transaction.
	SaveTransaction(tx models.MTransactionRecord) error

	// -----------------------------------------------------------------------------

	// RecentTransactions returns the newest transactions for an authority,
	// newest first, capped at limit.
	RecentTransactions(authority string, limit int) ([]models.MTransactionRecord, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes records older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
