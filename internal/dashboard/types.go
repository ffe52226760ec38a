// Package dashboard implements the read-only HTTP/WebSocket monitoring
// surface: a snapshot of the latest price stream per product,
// a bounded history of recent executions, and the current state of every
// inquiry the system has seen, pushed to connected clients as they happen.
package dashboard

import (
	"time"

	"treasury-book-engine/pkg/bond"
)

// Snapshot is the complete dashboard state returned by GET /snapshot and
// sent to every WebSocket client on connect.
type Snapshot struct {
	Timestamp  time.Time             `json:"timestamp"`
	Streams    []bond.PriceStream    `json:"streams"`
	Executions []bond.ExecutionOrder `json:"executions"`
	Inquiries  []bond.Inquiry        `json:"inquiries"`
}

// Event wraps a single incremental update pushed over the WebSocket.
type Event struct {
	Type      string      `json:"type"` // "stream", "execution", "inquiry"; "snapshot" for the initial message on connect
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}
