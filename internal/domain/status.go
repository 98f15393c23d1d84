package domain

import "time"

// ConnectionStatus is a point-in-time snapshot of channel health.
// LastConnected keeps its value across disconnects; the zero value means the
// channel has never been open.
type ConnectionStatus struct {
	IsConnected       bool      `json:"isConnected"`
	LastConnected     time.Time `json:"lastConnected,omitzero"`
	ReconnectAttempts int       `json:"reconnectAttempts"`
}
