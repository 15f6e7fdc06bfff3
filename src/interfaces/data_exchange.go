package interfaces

import "drift-observer/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defining the interface for sharing data with external systems (Server/Push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a snapshot to all connected dashboard clients and
	// updates the cached state.
	Broadcast(snapshot *models.MSnapshot)

	// -----------------------------------------------------------------------------
	// UpdateSnapshot replaces the cached state without broadcasting.
	UpdateSnapshot(snapshot *models.MSnapshot)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
