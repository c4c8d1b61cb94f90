package main

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/steamboiler/internal/boiler"
	"github.com/sweeney/steamboiler/internal/plant"
	mqtttransport "github.com/sweeney/steamboiler/internal/transport/mqtt"
)

func testConfig() boiler.Config {
	return boiler.NewConfig(1000, 200, 800, 50, 950, 30, []float64{10, 10})
}

func runTestLoop(t *testing.T, sim *plant.Simulator, transport mqtttransport.Transport, nTicks int, sig os.Signal) error {
	t.Helper()
	tick := make(chan time.Time)
	sigCh := make(chan os.Signal, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(sim, transport, time.Second, tick, sigCh)
	}()

	for i := 0; i < nTicks; i++ {
		tick <- time.Time{}
	}
	sigCh <- sig

	return <-errCh
}

func TestRunLoopPublishesEachCycle(t *testing.T) {
	sim := plant.NewSimulator(testConfig(), 500, nil, 1)
	transport := mqtttransport.NewFakeTransport(4)

	if err := runTestLoop(t, sim, transport, 3, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(transport.Published) != 3 {
		t.Fatalf("expected 3 published batches, got %d", len(transport.Published))
	}
	if sim.Cycle() != 3 {
		t.Errorf("Cycle: got %d, want 3", sim.Cycle())
	}
}

func TestRunLoopAppliesQueuedCommandsBeforeStepping(t *testing.T) {
	sim := plant.NewSimulator(testConfig(), 500, nil, 1)
	transport := mqtttransport.NewFakeTransport(4)
	transport.Deliver(boiler.Mailbox{boiler.WithPump(boiler.KindOpenPumpN, 0), boiler.WithPump(boiler.KindOpenPumpN, 1)})

	if err := runTestLoop(t, sim, transport, 1, syscall.SIGINT); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if sim.Water() <= 500 {
		t.Errorf("Water: got %v, want > 500 after opening both pumps", sim.Water())
	}
}

func TestRunLoopHoldsRelayStateWithNoCommand(t *testing.T) {
	sim := plant.NewSimulator(testConfig(), 500, nil, 1)
	transport := mqtttransport.NewFakeTransport(4)
	transport.Deliver(boiler.Mailbox{boiler.WithPump(boiler.KindOpenPumpN, 0)})

	if err := runTestLoop(t, sim, transport, 2, syscall.SIGTERM); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	last := transport.Published[len(transport.Published)-1]
	var sawPumpStateForPump0 bool
	for _, m := range last.Messages {
		if m.Kind == boiler.KindPumpStateNB && m.Pump == 0 {
			sawPumpStateForPump0 = true
			if !m.Bool {
				t.Error("expected pump 0 to remain open on the second cycle with no new command")
			}
		}
	}
	if !sawPumpStateForPump0 {
		t.Fatal("expected a PUMP_STATE_n_b reading for pump 0")
	}
}
