// Package status provides a thread-safe status tracker for the boiler
// daemon, read by the HTTP status server and by the MQTT system-event
// publisher.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/steamboiler/internal/boiler"
)

// Config contains daemon configuration for display.
type Config struct {
	CycleMs     int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
}

// UnitStatus is the display state of one physical unit's repair handshake.
type UnitStatus struct {
	FailState   string
	FailureType string
}

// Snapshot is a point-in-time view of daemon state. It is a value type —
// safe to use after the lock is released.
type Snapshot struct {
	Mode      string
	Cycle     int64
	Water     float64
	Steam     float64
	PumpOn    [boiler.MaxPumps]bool
	ValveOpen bool
	Pumps     int

	WaterUnit UnitStatus
	SteamUnit UnitStatus
	PumpUnits [boiler.MaxPumps]UnitStatus
	CtrlUnits [boiler.MaxPumps]UnitStatus

	PredMin, PredMax float64
	HavePred         bool

	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update records the result of one controller cycle, reading the
// controller's own tracked state directly. Called from the runner loop
// right after Controller.Clock returns.
func (t *Tracker) Update(cycle int64, c *boiler.Controller, water, steam float64) {
	t.mu.Lock()
	t.snap.Cycle = cycle
	t.snap.Mode = c.Mode().String()
	t.snap.Water = water
	t.snap.Steam = steam
	t.snap.ValveOpen = c.ValveOpen()
	t.snap.PumpOn = c.PumpOn()
	t.snap.Pumps = c.Pumps()
	min, max, ok := c.PredictedBand()
	t.snap.PredMin, t.snap.PredMax, t.snap.HavePred = min, max, ok

	t.snap.WaterUnit = unitStatusOf(c.WaterStatus())
	t.snap.SteamUnit = unitStatusOf(c.SteamStatus())
	for i := 0; i < c.Pumps(); i++ {
		t.snap.PumpUnits[i] = unitStatusOf(c.PumpStatus(i))
		t.snap.CtrlUnits[i] = unitStatusOf(c.ControlStatus(i))
	}
	t.mu.Unlock()
}

func unitStatusOf(state boiler.FailState, failureType boiler.FailureType) UnitStatus {
	return UnitStatus{FailState: state.String(), FailureType: failureType.String()}
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state. Now is set to
// the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
