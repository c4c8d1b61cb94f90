// Package plantio drives the physical pump and valve relays over GPIO. The
// controller's pump/valve commands are inherently binary (open/closed), the
// same shape as the daemon's original CH/HW channel reads, so the teacher's
// GPIO abstraction carries over directly — only now as outputs commanded by
// the controller rather than inputs polled from the heating system.
package plantio

import "github.com/sweeney/steamboiler/internal/boiler"

// Actuator drives the physical pump relays and the feed valve.
type Actuator interface {
	// SetPump drives pump i's relay line.
	SetPump(i int, on bool) error

	// SetValve drives the feed valve relay line.
	SetValve(open bool) error

	// Close releases GPIO resources.
	Close() error
}

// Apply drives every OPEN_PUMP_n/CLOSE_PUMP_n/VALVE message in a cycle's
// outbound batch through the actuator, in message order. The caller
// typically passes the same batch just published to the plant over MQTT:
// GPIO and MQTT are two independent consumers of the same command batch, one
// for the physically attached relays and one for monitoring/simulation.
func Apply(a Actuator, messages []boiler.Message, valveWasOpen *bool) error {
	for _, m := range messages {
		switch m.Kind {
		case boiler.KindOpenPumpN:
			if err := a.SetPump(m.Pump, true); err != nil {
				return err
			}
		case boiler.KindClosePumpN:
			if err := a.SetPump(m.Pump, false); err != nil {
				return err
			}
		case boiler.KindValve:
			*valveWasOpen = !*valveWasOpen
			if err := a.SetValve(*valveWasOpen); err != nil {
				return err
			}
		}
	}
	return nil
}

// Pin definitions (BCM numbering). Pump relays occupy the first MaxPumps
// lines starting at PinPumpBase; the valve relay is the line immediately
// after that block, whatever the configured pump count.
const (
	PinPumpBase = 17
	PinValve    = 17 + boiler.MaxPumps
)
