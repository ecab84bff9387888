package models

// -----------------------------------------------------------------------------
// Push channel messages
// -----------------------------------------------------------------------------

// Outbound message types.
const (
	MessageInitial = "INITIAL"
	MessageUpdate  = "UPDATE"
	MessageToast   = "TOAST"
	MessageError   = "ERROR"
)

// MPushMessage is what the hub writes to websocket clients.
type MPushMessage struct {
	Type  string          `json:"type" msgpack:"type"`
	View  *MDashboardView `json:"view,omitempty" msgpack:"view,omitempty"`
	Toast *MToast         `json:"toast,omitempty" msgpack:"toast,omitempty"`
	Error string          `json:"error,omitempty" msgpack:"error,omitempty"`
}

// MClientCommand is what websocket clients send. Only the fields relevant to
// Command are read.
type MClientCommand struct {
	Command   string `json:"command" msgpack:"command"`
	Encoding  string `json:"encoding,omitempty" msgpack:"encoding,omitempty"`
	Ticker    string `json:"ticker,omitempty" msgpack:"ticker,omitempty"`
	Query     string `json:"query,omitempty" msgpack:"query,omitempty"`
	Criterion string `json:"criterion,omitempty" msgpack:"criterion,omitempty"`
	Timeframe string `json:"timeframe,omitempty" msgpack:"timeframe,omitempty"`
	Value     string `json:"value,omitempty" msgpack:"value,omitempty"`
}
