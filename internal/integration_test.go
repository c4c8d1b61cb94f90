package internal

import (
	"testing"

	"github.com/sweeney/steamboiler/internal/boiler"
	"github.com/sweeney/steamboiler/internal/plant"
	"github.com/sweeney/steamboiler/internal/plantio"
	"github.com/sweeney/steamboiler/internal/wire"
)

// TestIntegrationFillToNormal drives the full in-memory pipeline — plant
// physics, wire codec, controller, actuator — through enough cycles to go
// from a cold start to Normal operation, with no network or GPIO involved.
func TestIntegrationFillToNormal(t *testing.T) {
	cfg := boiler.NewConfig(1000, 200, 800, 50, 950, 30, []float64{10, 10})
	controller := boiler.New(cfg)
	sim := plant.NewSimulator(cfg, 150, nil, 1)
	actuator := plantio.NewFakeActuator()
	var valveOpen bool

	const maxCycles = 50
	reachedNormal := false

	for i := int64(1); i <= maxCycles; i++ {
		reading := sim.Step(1)

		payload, err := wire.Encode(i, reading)
		if err != nil {
			t.Fatalf("cycle %d: encode plant reading: %v", i, err)
		}
		incoming, err := wire.Decode(payload)
		if err != nil {
			t.Fatalf("cycle %d: decode plant reading: %v", i, err)
		}

		var out boiler.OutBatch
		controller.Clock(incoming, &out)
		messages := out.Messages()

		if controller.Mode() == boiler.ModeEmergencyStop {
			t.Fatalf("cycle %d: unexpected EmergencyStop", i)
		}

		if err := plantio.Apply(actuator, messages, &valveOpen); err != nil {
			t.Fatalf("cycle %d: apply to actuator: %v", i, err)
		}
		sim.ApplyCommands(messages)

		if controller.Mode() == boiler.ModeNormal {
			reachedNormal = true
			break
		}
	}

	if !reachedNormal {
		t.Fatalf("controller did not reach Normal within %d cycles (mode=%v, water=%.1f)", maxCycles, controller.Mode(), sim.Water())
	}
	if sim.Water() < cfg.LimitMin || sim.Water() > cfg.LimitMax {
		t.Errorf("water out of safety limits at Normal: got %.1f, want within [%.1f, %.1f]", sim.Water(), cfg.LimitMin, cfg.LimitMax)
	}
}

// TestIntegrationPumpStuckDrivesDegraded exercises the full pipeline with a
// scripted pump-stuck fault, verifying the controller reacts by entering
// Degraded instead of continuing to command the stuck pump.
func TestIntegrationPumpStuckDrivesDegraded(t *testing.T) {
	cfg := boiler.NewConfig(1000, 200, 800, 50, 950, 30, []float64{10, 10})
	controller := boiler.New(cfg)
	faults := []plant.ScheduledFault{{Cycle: 1, Kind: plant.FaultPumpStuck, Pump: 0}}
	sim := plant.NewSimulator(cfg, 500, faults, 1)
	actuator := plantio.NewFakeActuator()
	var valveOpen bool

	sawDegraded := false
	for i := int64(1); i <= 40; i++ {
		reading := sim.Step(1)
		payload, _ := wire.Encode(i, reading)
		incoming, err := wire.Decode(payload)
		if err != nil {
			t.Fatalf("cycle %d: decode plant reading: %v", i, err)
		}

		var out boiler.OutBatch
		controller.Clock(incoming, &out)
		messages := out.Messages()

		if controller.Mode() == boiler.ModeEmergencyStop {
			t.Fatalf("cycle %d: unexpected EmergencyStop", i)
		}
		if controller.Mode() == boiler.ModeDegraded {
			sawDegraded = true
		}

		plantio.Apply(actuator, messages, &valveOpen)
		sim.ApplyCommands(messages)
	}

	if !sawDegraded {
		t.Error("expected the controller to enter Degraded once it commands the stuck pump and observes the mismatch")
	}
}
