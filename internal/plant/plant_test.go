package plant

import (
	"testing"

	"github.com/sweeney/steamboiler/internal/boiler"
)

func testConfig() boiler.Config {
	return boiler.NewConfig(1000, 200, 800, 50, 950, 30, []float64{10, 10})
}

// pumpBoolsFromMailbox pulls the per-pump boolean readings of the given
// kind out of a mailbox built by Simulator.Step, for test assertions.
func pumpBoolsFromMailbox(mb boiler.Mailbox, kind boiler.Kind, count int) [boiler.MaxPumps]bool {
	var out [boiler.MaxPumps]bool
	for _, m := range mb {
		if m.Kind == kind && m.Pump >= 0 && m.Pump < count {
			out[m.Pump] = m.Bool
		}
	}
	return out
}

func TestStepSendsSteamBoilerWaitingOnce(t *testing.T) {
	s := NewSimulator(testConfig(), 500, nil, 1)

	mb := s.Step(1)
	if !mb.Has(boiler.KindSteamBoilerWaiting) {
		t.Error("expected STEAM_BOILER_WAITING on first cycle")
	}

	mb2 := s.Step(1)
	if mb2.Has(boiler.KindSteamBoilerWaiting) {
		t.Error("expected STEAM_BOILER_WAITING only on first cycle")
	}
}

func TestStepSendsPhysicalUnitsReadyAfterProgramReady(t *testing.T) {
	s := NewSimulator(testConfig(), 500, nil, 1)
	s.Step(1)

	s.ApplyCommands([]boiler.Message{boiler.Simple(boiler.KindProgramReady)})
	mb := s.Step(1)

	if !mb.Has(boiler.KindPhysicalUnitsReady) {
		t.Error("expected PHYSICAL_UNITS_READY the cycle after PROGRAM_READY")
	}

	mb2 := s.Step(1)
	if mb2.Has(boiler.KindPhysicalUnitsReady) {
		t.Error("expected PHYSICAL_UNITS_READY only once")
	}
}

func TestApplyCommandsOpensAndClosesPumps(t *testing.T) {
	s := NewSimulator(testConfig(), 500, nil, 1)
	s.ApplyCommands([]boiler.Message{boiler.WithPump(boiler.KindOpenPumpN, 0)})

	mb := s.Step(1)
	pumps := pumpBoolsFromMailbox(mb, boiler.KindPumpStateNB, 2)
	if !pumps[0] || pumps[1] {
		t.Errorf("pumps: got %v, want [true false]", pumps)
	}

	s.ApplyCommands([]boiler.Message{boiler.WithPump(boiler.KindClosePumpN, 0)})
	mb2 := s.Step(1)
	pumps2 := pumpBoolsFromMailbox(mb2, boiler.KindPumpStateNB, 2)
	if pumps2[0] {
		t.Error("expected pump 0 closed")
	}
}

func TestStepRaisesWaterWhenPumpOpen(t *testing.T) {
	s := NewSimulator(testConfig(), 500, nil, 1)
	s.ApplyCommands([]boiler.Message{boiler.WithPump(boiler.KindOpenPumpN, 0), boiler.WithPump(boiler.KindOpenPumpN, 1)})

	s.Step(1)
	if s.Water() <= 500 {
		t.Errorf("Water: got %v, want > 500 with both pumps open and no steam yet", s.Water())
	}
}

func TestWaterStuckFaultFreezesReading(t *testing.T) {
	faults := []ScheduledFault{{Cycle: 1, Kind: FaultWaterStuck}}
	s := NewSimulator(testConfig(), 500, faults, 1)
	s.ApplyCommands([]boiler.Message{boiler.WithPump(boiler.KindOpenPumpN, 0)})

	s.Step(1)
	frozen := s.Water()
	s.Step(1)
	if s.Water() != frozen {
		t.Errorf("Water changed despite FaultWaterStuck: got %v, want %v", s.Water(), frozen)
	}
}

func TestPumpStuckFaultIgnoresCommands(t *testing.T) {
	faults := []ScheduledFault{{Cycle: 1, Kind: FaultPumpStuck, Pump: 0}}
	s := NewSimulator(testConfig(), 500, faults, 1)

	s.ApplyCommands([]boiler.Message{boiler.WithPump(boiler.KindOpenPumpN, 0)})
	mb := s.Step(1)
	pumps := pumpBoolsFromMailbox(mb, boiler.KindPumpStateNB, 2)
	if pumps[0] {
		t.Error("expected pump 0 to stay closed despite OPEN_PUMP_0, fault active")
	}
}

func TestPumpStuckFaultExpiresAtUntil(t *testing.T) {
	faults := []ScheduledFault{{Cycle: 1, Until: 2, Kind: FaultPumpStuck, Pump: 0}}
	s := NewSimulator(testConfig(), 500, faults, 1)

	s.ApplyCommands([]boiler.Message{boiler.WithPump(boiler.KindOpenPumpN, 0)})
	s.Step(1) // cycle 1, fault active, command ignored
	s.ApplyCommands([]boiler.Message{boiler.WithPump(boiler.KindOpenPumpN, 0)})
	mb := s.Step(1) // cycle 2, fault expired
	pumps := pumpBoolsFromMailbox(mb, boiler.KindPumpStateNB, 2)
	if !pumps[0] {
		t.Error("expected pump 0 to open once the fault window has passed")
	}
}

func TestControlBrokenFaultDisagreesWithActualState(t *testing.T) {
	faults := []ScheduledFault{{Cycle: 1, Kind: FaultControlBroken, Pump: 1}}
	s := NewSimulator(testConfig(), 500, faults, 1)
	s.ApplyCommands([]boiler.Message{boiler.WithPump(boiler.KindOpenPumpN, 1)})

	mb := s.Step(1)
	ctrls := pumpBoolsFromMailbox(mb, boiler.KindPumpControlStateNB, 2)
	if ctrls[1] {
		t.Error("expected control-state reading to disagree with actual pump-1 state")
	}
}
