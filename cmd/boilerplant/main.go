// Command boilerplant simulates the physical steam boiler: it tracks a
// true water level and steam rate, drives them from the controller's
// pump/valve commands received over MQTT, and publishes the resulting
// readings back each cycle. It is the Go-native stand-in for the original
// source tree's Simulation.java, letting boilerd be exercised end-to-end
// without real hardware.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/steamboiler/internal/boiler"
	"github.com/sweeney/steamboiler/internal/config"
	"github.com/sweeney/steamboiler/internal/plant"
	mqtttransport "github.com/sweeney/steamboiler/internal/transport/mqtt"
)

var log = slog.New(slog.NewTextHandler(os.Stderr, nil))

func main() {
	cfg, err := config.ParsePlant(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Error("parse config", "error", err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Plant) error {
	sim := plant.NewSimulator(cfg.Boiler, cfg.InitialWater, cfg.Faults, cfg.Seed)

	transport, err := mqtttransport.NewRealTransport(cfg.Broker, "boilerplant", mqtttransport.TopicPlantOut, mqtttransport.TopicControllerOut)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer transport.Close()

	log.Info("started", "cycle", cfg.Cycle, "broker", cfg.Broker, "pumps", cfg.Boiler.Pumps, "faults", len(cfg.Faults))

	ticker := time.NewTicker(cfg.Cycle)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(sim, transport, cfg.Cycle, ticker.C, sigCh)
}

// runLoop is the plant's cyclic loop: each tick it applies the controller's
// latest command batch (if any arrived), advances the simulated physics by
// one cycle, and publishes the resulting reading batch.
func runLoop(sim *plant.Simulator, transport mqtttransport.Transport, cycle time.Duration, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Info("received signal, shutting down", "signal", s)
			return nil

		case <-tick:
			drainCommands(sim, transport.Incoming())

			cycleSeconds := cycle.Seconds()
			mb := sim.Step(cycleSeconds)

			if err := transport.Publish(sim.Cycle(), mb); err != nil {
				log.Warn("publish error", "cycle", sim.Cycle(), "error", err)
			}
		}
	}
}

// drainCommands applies every controller batch already queued on ch
// without blocking; a cycle with no command arriving leaves relay state
// unchanged, matching a real plant holding its last-commanded state.
func drainCommands(sim *plant.Simulator, ch <-chan boiler.Mailbox) {
	for {
		select {
		case mb := <-ch:
			sim.ApplyCommands(mb)
		default:
			return
		}
	}
}
