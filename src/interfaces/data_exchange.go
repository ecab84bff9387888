package interfaces

// -----------------------------------------------------------------------------
// IDataExchanger is a served surface (REST, push, RPC) with a lifecycle.
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// Start serving; blocks until the server stops.
	Start() error

	// Stop the server gracefully
	Stop() error
}
