// Package mqtt carries controller and plant message batches over MQTT,
// adapted from the daemon's original event-publishing package to a
// bidirectional transport: the controller publishes command batches and
// subscribes to plant readings, and the plant does the reverse.
package mqtt

import (
	"time"

	"github.com/sweeney/steamboiler/internal/boiler"
)

// TopicControllerOut carries MODE_m/VALVE/OPEN_PUMP_n/... batches emitted by
// the controller each cycle.
const TopicControllerOut = "steam/boiler/controller"

// TopicPlantOut carries LEVEL_v/STEAM_v/PUMP_STATE_n_b/... batches emitted by
// the plant each cycle.
const TopicPlantOut = "steam/boiler/plant"

// TopicSystem carries daemon lifecycle events (startup, shutdown, heartbeat),
// independent of the cyclic protocol.
const TopicSystem = "steam/boiler/system"

// Transport publishes one side's per-cycle message batch and delivers the
// other side's batches as they arrive.
type Transport interface {
	// Publish sends this cycle's outbound batch.
	Publish(cycle int64, messages []boiler.Message) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Incoming returns the channel of decoded mailboxes received from the
	// peer. Closed when the transport is closed.
	Incoming() <-chan boiler.Mailbox

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the underlying connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent mirrors the daemon's lifecycle event shape (startup, shutdown,
// heartbeat) independent of the cyclic boiler protocol.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g. "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
}
