package boiler

import "math"

// stuckThreshold is the StuckCounter value at which a sensor is declared
// stuck. The counter increments once per cycle the reading matches the
// previous cycle's reading, so stuckThreshold=2 means three consecutive
// identical readings (this cycle plus the two before it) — the source
// material documents two different thresholds (2 cycles in one code path,
// 3 in another); this implementation standardizes on 3 consecutive
// identical readings everywhere a stuck check occurs, including the
// Initialisation precondition.
const stuckThreshold = 2

// Controller is the cyclic steam-boiler controller. All of its state is
// created at construction and lives for the lifetime of the controller; a
// cycle (Clock) never allocates beyond the messages it sends.
type Controller struct {
	cfg Config

	mode Mode

	valveOpen bool
	pumpOn    [MaxPumps]bool

	water unit
	steam unit
	pump  [MaxPumps]unit
	ctrl  [MaxPumps]unit

	haveReading     bool
	prevWater       float64
	prevSteam       float64
	waterStuckCount int
	steamStuckCount int

	havePred bool
	predMin  float64
	predMax  float64

	initDone       bool
	initHighStreak int

	rescueSide rescueSide
}

type rescueSide int

const (
	rescueSideMin rescueSide = iota
	rescueSideMax
)

// New constructs a Controller for the given configuration, starting in
// mode Waiting. It panics if cfg fails Validate, matching the teacher's
// convention of failing fast on a malformed configuration at construction
// rather than deferring the error into the first cycle.
func New(cfg Config) *Controller {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return &Controller{cfg: cfg, mode: ModeWaiting}
}

// Status returns the current mode for display only.
func (c *Controller) Status() string {
	return c.mode.String()
}

// Mode returns the current operating mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// PredictedBand returns the most recently computed predicted water-level
// band and whether one has been computed yet.
func (c *Controller) PredictedBand() (min, max float64, ok bool) {
	return c.predMin, c.predMax, c.havePred
}

// WaterStatus reports the water sensor's repair-handshake state.
func (c *Controller) WaterStatus() (FailState, FailureType) {
	return c.water.state, c.water.failureType
}

// SteamStatus reports the steam sensor's repair-handshake state.
func (c *Controller) SteamStatus() (FailState, FailureType) {
	return c.steam.state, c.steam.failureType
}

// PumpStatus reports pump i's repair-handshake state.
func (c *Controller) PumpStatus(i int) (FailState, FailureType) {
	return c.pump[i].state, c.pump[i].failureType
}

// ControlStatus reports pump controller i's repair-handshake state.
func (c *Controller) ControlStatus(i int) (FailState, FailureType) {
	return c.ctrl[i].state, c.ctrl[i].failureType
}

// Pumps returns the configured pump count.
func (c *Controller) Pumps() int {
	return c.cfg.Pumps
}

// ValveOpen reports the controller's tracked valve state.
func (c *Controller) ValveOpen() bool {
	return c.valveOpen
}

// PumpOn reports the controller's tracked commanded state for every pump.
func (c *Controller) PumpOn() [MaxPumps]bool {
	return c.pumpOn
}

// reading holds one cycle's extracted sensor snapshot.
type reading struct {
	water float64
	steam float64
	pumps [MaxPumps]bool
	ctrls [MaxPumps]bool
}

// Clock runs one 5-second cycle: extract, diagnose, act, emit mode (§4.1).
// It is atomic — incoming and outgoing are borrowed only for the duration
// of this call.
func (c *Controller) Clock(incoming Mailbox, outgoing *OutBatch) {
	if c.mode == ModeEmergencyStop {
		outgoing.Send(WithMode(ModeEmergencyStop))
		return
	}

	r, ok := c.extract(incoming)
	if !ok {
		c.mode = ModeEmergencyStop
		outgoing.Send(WithMode(ModeEmergencyStop))
		return
	}

	c.updateStuckCounters(r.water, r.steam)

	if incoming.Has(KindPhysicalUnitsReady) && (c.mode == ModeWaiting || c.mode == ModeInitialisation) {
		// Steam must read exactly zero throughout Initialisation, so those
		// readings do not count toward a stuck steam sensor.
		c.steamStuckCount = 0
		if c.nonWaterFailureCount() > 0 {
			c.mode = ModeDegraded
		} else {
			c.mode = ModeNormal
		}
	}

	if c.diagnosable() {
		c.diagnose(r, outgoing)
		if c.mode != ModeEmergencyStop {
			c.runHandshakes(incoming, outgoing)
			c.reconcileMode()
		}
	}

	if c.mode != ModeEmergencyStop {
		c.act(r, incoming, outgoing)
	}

	outgoing.Send(WithMode(c.mode.announced()))

	c.prevWater = r.water
	c.prevSteam = r.steam
	c.haveReading = true
}

func (c *Controller) diagnosable() bool {
	return c.mode == ModeNormal || c.mode == ModeDegraded || c.mode == ModeRescue
}

// act dispatches pump/valve operation to the mode-specific handler,
// running only after diagnosis (and any resulting handshake/mode
// reconciliation) has settled the mode for this cycle.
func (c *Controller) act(r reading, incoming Mailbox, out *OutBatch) {
	if c.mode == ModeWaiting {
		if !incoming.Has(KindSteamBoilerWaiting) {
			return
		}
		// The plant can announce readiness and the first real reading in
		// the same cycle; fall through to Initialisation immediately
		// rather than waiting an extra cycle to notice.
		c.mode = ModeInitialisation
	}

	switch c.mode {
	case ModeInitialisation:
		c.runInitialisation(r, out)
	case ModeNormal:
		c.runNormal(r, out)
	case ModeDegraded:
		c.runDegraded(r, out)
	case ModeRescue:
		c.runRescue(r, out)
	}
}

// extract reads the expected messages from incoming: exactly one LEVEL_v,
// one STEAM_v, P PUMP_STATE_n_b, and P PUMP_CONTROL_STATE_n_b (§4.1 step
// 1). ok is false on any transmission failure.
func (c *Controller) extract(incoming Mailbox) (reading, bool) {
	water, ok := incoming.onlyDouble(KindLevelV)
	if !ok || math.IsNaN(water) || math.IsInf(water, 0) {
		return reading{}, false
	}
	steam, ok := incoming.onlyDouble(KindSteamV)
	if !ok || math.IsNaN(steam) || math.IsInf(steam, 0) {
		return reading{}, false
	}
	pumps, ok := incoming.pumpBools(KindPumpStateNB, c.cfg.Pumps)
	if !ok {
		return reading{}, false
	}
	ctrls, ok := incoming.pumpBools(KindPumpControlStateNB, c.cfg.Pumps)
	if !ok {
		return reading{}, false
	}
	return reading{water: water, steam: steam, pumps: pumps, ctrls: ctrls}, true
}

// updateStuckCounters advances the water/steam StuckCounter fields,
// resetting on any change in value. The very first cycle only establishes
// the baseline and never counts as stuck.
func (c *Controller) updateStuckCounters(water, steam float64) {
	if !c.haveReading {
		c.waterStuckCount = 0
		c.steamStuckCount = 0
		return
	}
	if water == c.prevWater {
		c.waterStuckCount++
	} else {
		c.waterStuckCount = 0
	}
	if steam == c.prevSteam {
		c.steamStuckCount++
	} else {
		c.steamStuckCount = 0
	}
}

// nonWaterFailureCount is NumberOfFailures (§3): the count of active
// non-water faults. It governs Degraded->Normal recovery and is computed
// on demand rather than cached, so it can never go stale.
func (c *Controller) nonWaterFailureCount() int {
	count := 0
	if c.steam.state != FailNone {
		count++
	}
	for i := 0; i < c.cfg.Pumps; i++ {
		if c.pump[i].state != FailNone {
			count++
		}
		if c.ctrl[i].state != FailNone {
			count++
		}
	}
	return count
}

// reconcileMode applies the mode-recovery rules of §4.1 step 4: Degraded
// returns to Normal once the non-water failure count reaches zero; Rescue
// returns to Degraded (if other faults remain) or Normal once the water
// sensor is repaired.
func (c *Controller) reconcileMode() {
	switch c.mode {
	case ModeDegraded:
		if c.nonWaterFailureCount() == 0 {
			c.mode = ModeNormal
		}
	case ModeRescue:
		if c.water.state == FailNone {
			if c.nonWaterFailureCount() > 0 {
				c.mode = ModeDegraded
			} else {
				c.mode = ModeNormal
			}
		}
	}
}

// setPump commands pump i to the given state, emitting OPEN_PUMP_n or
// CLOSE_PUMP_n only if the tracked commanded state actually changes
// (§4.4).
func (c *Controller) setPump(i int, on bool, out *OutBatch) {
	if c.pumpOn[i] == on {
		return
	}
	c.pumpOn[i] = on
	if on {
		out.Send(WithPump(KindOpenPumpN, i))
	} else {
		out.Send(WithPump(KindClosePumpN, i))
	}
}

func (c *Controller) closeAllPumps(out *OutBatch) {
	for i := 0; i < c.cfg.Pumps; i++ {
		c.setPump(i, false, out)
	}
}

func (c *Controller) openAllPumps(out *OutBatch) {
	for i := 0; i < c.cfg.Pumps; i++ {
		c.setPump(i, true, out)
	}
}

// setValve toggles the valve via a single VALVE message, only ever called
// from Initialisation (§4.2).
func (c *Controller) setValve(open bool, out *OutBatch) {
	if c.valveOpen == open {
		return
	}
	c.valveOpen = open
	out.Send(Simple(KindValve))
}

// applyPumpSelection turns on the first k pumps (in index order) whose
// PumpFailState is NoFail, closing all others; a pump with a declared
// fault is always commanded closed regardless of k (§4.3 "Pump
// assignment").
func (c *Controller) applyPumpSelection(k int, out *OutBatch) {
	remaining := k
	for i := 0; i < c.cfg.Pumps; i++ {
		if c.pump[i].state != FailNone {
			c.setPump(i, false, out)
			continue
		}
		if remaining > 0 {
			c.setPump(i, true, out)
			remaining--
		} else {
			c.setPump(i, false, out)
		}
	}
}

// selectPumps runs the prediction engine for the given observed/estimated
// water level and steam rate, applies the safety gate (§4.3), and either
// commands pumps or trips EmergencyStop. It returns false if the gate
// tripped.
func (c *Controller) selectPumps(water, steam float64, out *OutBatch) bool {
	k, band := c.choosePumps(water, steam)
	if band.Min <= c.cfg.LimitMin || band.Max >= c.cfg.LimitMax {
		c.mode = ModeEmergencyStop
		return false
	}
	c.predMin, c.predMax, c.havePred = band.Min, band.Max, true
	c.applyPumpSelection(k, out)
	return true
}
