// Package plant simulates the physical steam boiler: true water level and
// steam production, pump/valve relays driven by the controller's commands,
// and a schedule of injected sensor/actuator faults. It is the Go-native
// equivalent of the original source tree's Simulation.java, driving
// cmd/boilerplant the way the controller's Clock drives cmd/boilerd.
package plant

import (
	"math/rand"

	"github.com/sweeney/steamboiler/internal/boiler"
)

// FaultKind identifies the kind of physical fault a ScheduledFault injects.
type FaultKind int

const (
	// FaultWaterStuck freezes the simulated water level at its current
	// value: while active the level is not integrated, so both LEVEL_v and
	// Water() hold the frozen value.
	FaultWaterStuck FaultKind = iota
	// FaultSteamStuck freezes the simulated steam rate at its current value:
	// while active the rate is not updated, so both STEAM_v and Steam() hold
	// the frozen value.
	FaultSteamStuck
	// FaultPumpStuck freezes a pump's relay in its current on/off state,
	// ignoring further OPEN_PUMP_n/CLOSE_PUMP_n commands.
	FaultPumpStuck
	// FaultControlBroken makes a pump's reported control-state reading
	// disagree with its actual relay state.
	FaultControlBroken
)

// ScheduledFault injects one fault starting at Cycle and lasting until
// Until (exclusive); Until of 0 means it lasts for the rest of the run.
// Pump is the affected pump index, ignored for FaultWaterStuck/FaultSteamStuck.
type ScheduledFault struct {
	Cycle, Until int64
	Kind         FaultKind
	Pump         int
}

func (f ScheduledFault) active(cycle int64) bool {
	if cycle < f.Cycle {
		return false
	}
	return f.Until == 0 || cycle < f.Until
}

// Simulator tracks the true physical state of one boiler: water level,
// steam production, and pump/valve relay state, advanced one cycle at a
// time by Step.
type Simulator struct {
	cfg    boiler.Config
	faults []ScheduledFault
	rng    *rand.Rand

	cycle int64
	water float64
	steam float64

	pumpOn [boiler.MaxPumps]bool
	ctrlOn [boiler.MaxPumps]bool
	valve  bool

	sawProgramReady   bool
	sentUnitsReady    bool
	sentBoilerWaiting bool
}

// NewSimulator creates a Simulator starting at the given water level with
// steam production at zero, matching the physical boiler's cold-start
// state (§4.2: Initialisation begins with no steam).
func NewSimulator(cfg boiler.Config, initialWater float64, faults []ScheduledFault, seed int64) *Simulator {
	return &Simulator{
		cfg:    cfg,
		faults: faults,
		rng:    rand.New(rand.NewSource(seed)),
		water:  initialWater,
	}
}

func (s *Simulator) faultActive(kind FaultKind, pump int) bool {
	for _, f := range s.faults {
		if f.Kind != kind || !f.active(s.cycle) {
			continue
		}
		if kind == FaultPumpStuck || kind == FaultControlBroken {
			if f.Pump != pump {
				continue
			}
		}
		return true
	}
	return false
}

// ApplyCommands drives the relay state from a cycle's controller batch,
// respecting a scheduled FaultPumpStuck by ignoring commands to the
// affected pump. Commands take effect in the cycle the next Step advances
// to, so faults are checked against that cycle.
func (s *Simulator) ApplyCommands(messages []boiler.Message) {
	next := s.cycle + 1
	stuck := func(pump int) bool {
		for _, f := range s.faults {
			if f.Kind == FaultPumpStuck && f.Pump == pump && f.active(next) {
				return true
			}
		}
		return false
	}
	for _, m := range messages {
		switch m.Kind {
		case boiler.KindOpenPumpN:
			if !stuck(m.Pump) {
				s.pumpOn[m.Pump] = true
			}
		case boiler.KindClosePumpN:
			if !stuck(m.Pump) {
				s.pumpOn[m.Pump] = false
			}
		case boiler.KindValve:
			s.valve = !s.valve
		case boiler.KindProgramReady:
			s.sawProgramReady = true
		}
	}
}

// steamTarget is the steam rate the simulated furnace drifts toward once
// the plant is out of Initialisation. A real plant's demand curve; here a
// fixed fraction of the maximum steam rate keeps runs deterministic given a
// fixed seed.
const steamTarget = 0.6

// Step advances the simulation by one cycle of length cycleSeconds and
// returns that cycle's outbound reading batch (LEVEL_v, STEAM_v, and the
// per-pump state pairs), applying any fault scheduled for this cycle.
func (s *Simulator) Step(cycleSeconds float64) boiler.Mailbox {
	s.cycle++

	var inflow float64
	for i := 0; i < s.cfg.Pumps; i++ {
		if s.pumpOn[i] {
			inflow += s.cfg.PumpCapacity[i]
		}
	}
	outflow := s.steam
	if s.valve {
		outflow += s.cfg.MaxSteamRate
	}

	if !s.faultActive(FaultWaterStuck, -1) {
		s.water += (inflow - outflow) * cycleSeconds
		if s.water < 0 {
			s.water = 0
		}
		if s.water > s.cfg.Capacity {
			s.water = s.cfg.Capacity
		}
	}

	if s.sentUnitsReady && !s.faultActive(FaultSteamStuck, -1) {
		target := steamTarget * s.cfg.MaxSteamRate
		s.steam += (target - s.steam) * 0.2
		s.steam += (s.rng.Float64() - 0.5) * s.cfg.MaxSteamRate * 0.05
		if s.steam < 0 {
			s.steam = 0
		}
		if s.steam > s.cfg.MaxSteamRate {
			s.steam = s.cfg.MaxSteamRate
		}
	}

	for i := 0; i < s.cfg.Pumps; i++ {
		if s.faultActive(FaultControlBroken, i) {
			s.ctrlOn[i] = !s.pumpOn[i]
		} else {
			s.ctrlOn[i] = s.pumpOn[i]
		}
	}

	var mb boiler.Mailbox
	if !s.sentBoilerWaiting {
		mb = append(mb, boiler.Simple(boiler.KindSteamBoilerWaiting))
		s.sentBoilerWaiting = true
	}
	if s.sawProgramReady && !s.sentUnitsReady {
		mb = append(mb, boiler.Simple(boiler.KindPhysicalUnitsReady))
		s.sentUnitsReady = true
	}

	mb = append(mb, boiler.WithDouble(boiler.KindLevelV, s.water))
	mb = append(mb, boiler.WithDouble(boiler.KindSteamV, s.steam))
	for i := 0; i < s.cfg.Pumps; i++ {
		mb = append(mb, boiler.WithPumpBool(boiler.KindPumpStateNB, i, s.pumpOn[i]))
		mb = append(mb, boiler.WithPumpBool(boiler.KindPumpControlStateNB, i, s.ctrlOn[i]))
	}
	return mb
}

// Water returns the simulated water level (the value reported in LEVEL_v),
// for display/testing.
func (s *Simulator) Water() float64 { return s.water }

// Steam returns the simulated steam rate (the value reported in STEAM_v),
// for display/testing.
func (s *Simulator) Steam() float64 { return s.steam }

// Cycle returns the number of Step calls made so far.
func (s *Simulator) Cycle() int64 { return s.cycle }
