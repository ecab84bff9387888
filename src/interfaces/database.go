package interfaces

import "stock-dashboard/src/models"

// -----------------------------------------------------------------------------
// IPreferenceStore is a string key/value store for user preferences.
// -----------------------------------------------------------------------------

type IPreferenceStore interface {

	// GetPreference returns the stored value and whether the key exists.
	GetPreference(key string) (string, bool, error)

	// SetPreference inserts or replaces key.
	SetPreference(key, value string) error
}

// -----------------------------------------------------------------------------
// ISnapshotRecorder keeps installed snapshots for retention.
// -----------------------------------------------------------------------------

type ISnapshotRecorder interface {
	SaveSnapshot(snapshot *models.MSnapshot) error
}

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {
	IPreferenceStore
	ISnapshotRecorder

	// Initialize opens the connection and creates missing tables.
	Initialize() error

	// CleanupOldData removes snapshots older than the retention policy.
	CleanupOldData() error

	// Close the database connection
	Close() error
}
