package interfaces

import "stock-dashboard/src/models"

// -----------------------------------------------------------------------------
// INotifier delivers transient notifications to whoever is watching.
// -----------------------------------------------------------------------------

type INotifier interface {
	Notify(toast models.MToast)
}
