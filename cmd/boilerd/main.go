// Command boilerd runs the cyclic steam-boiler controller: it drives pump
// and valve relays from plant readings received over MQTT, publishing its
// own command batches back to the plant each cycle.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/steamboiler/internal/boiler"
	"github.com/sweeney/steamboiler/internal/config"
	"github.com/sweeney/steamboiler/internal/plantio"
	"github.com/sweeney/steamboiler/internal/status"
	mqtttransport "github.com/sweeney/steamboiler/internal/transport/mqtt"
	"github.com/sweeney/steamboiler/internal/web"
)

var log = slog.New(slog.NewTextHandler(os.Stderr, nil))

func main() {
	cfg, err := config.ParseDaemon(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Error("parse config", "error", err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Daemon) error {
	controller := boiler.New(cfg.Boiler)

	transport, err := mqtttransport.NewRealTransport(cfg.Broker, "boilerd", mqtttransport.TopicControllerOut, mqtttransport.TopicPlantOut)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer transport.Close()

	actuator, err := plantio.NewRealActuator(plantio.PinPumpBase, plantio.PinValve, cfg.Boiler.Pumps)
	if err != nil {
		log.Warn("init gpio actuator, continuing without local relays", "error", err)
		actuator = nil
	} else {
		defer actuator.Close()
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		CycleMs:     cfg.Cycle.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
	})
	snap := tracker.Snapshot()
	startupEvent := mqtttransport.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := transport.PublishSystem(startupEvent); err != nil {
		log.Warn("failed to publish startup event", "error", err)
	} else {
		log.Info("published startup event")
	}

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("http server error", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info("http status server listening", "addr", cfg.HTTPAddr)
	}

	log.Info("started", "cycle", cfg.Cycle, "broker", cfg.Broker, "pumps", cfg.Boiler.Pumps, "heartbeat", cfg.Heartbeat)

	ticker := time.NewTicker(cfg.Cycle)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(controller, transport, actuator, tracker, cfg.Cycle, cfg.Heartbeat, time.Now, ticker.C, sigCh)
}

// runLoop is the cyclic controller loop: each tick it collects the plant's
// latest mailbox, runs one Controller.Clock, and publishes/drives the
// result. Grounded on the daemon's original poll/detect/publish loop, now
// driven by a fixed cycle instead of a GPIO poll interval.
func runLoop(
	controller *boiler.Controller,
	transport mqtttransport.Transport,
	actuator plantio.Actuator,
	tracker *status.Tracker,
	cycle, heartbeat time.Duration,
	now func() time.Time,
	tick <-chan time.Time,
	sig <-chan os.Signal,
) error {
	var cycleNum int64
	var valveOpen bool
	var lastHeartbeat time.Time
	lastMode := controller.Mode()

	for {
		select {
		case s := <-sig:
			signalName := "UNKNOWN"
			switch s {
			case syscall.SIGINT:
				signalName = "SIGINT"
			case syscall.SIGTERM:
				signalName = "SIGTERM"
			}
			log.Info("received signal, shutting down", "signal", signalName)
			tracker.SetMQTTConnected(isConnected(transport))
			snap := tracker.Snapshot()
			event := mqtttransport.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     signalName,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
			}
			if err := transport.PublishSystem(event); err != nil {
				log.Warn("failed to publish shutdown event", "error", err)
			} else {
				log.Info("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			cycleNum++

			mailbox := collectMailbox(transport.Incoming(), cycle/4)

			var out boiler.OutBatch
			controller.Clock(mailbox, &out)
			messages := out.Messages()
			logDiagnoses(cycleNum, messages)

			if err := transport.Publish(cycleNum, messages); err != nil {
				log.Warn("publish error", "cycle", cycleNum, "error", err)
			}

			if actuator != nil {
				if err := plantio.Apply(actuator, messages, &valveOpen); err != nil {
					log.Warn("actuator error", "cycle", cycleNum, "error", err)
				}
			}

			water, steam := extractReadings(mailbox)
			tracker.Update(cycleNum, controller, water, steam)
			tracker.SetMQTTConnected(isConnected(transport))

			if heartbeat > 0 && (lastHeartbeat.IsZero() || t.Sub(lastHeartbeat) >= heartbeat) {
				lastHeartbeat = t
				snap := tracker.Snapshot()
				hbEvent := mqtttransport.SystemEvent{
					Timestamp:  t,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
				}
				if err := transport.PublishSystem(hbEvent); err != nil {
					log.Warn("heartbeat publish error", "error", err)
				}
			}

			if mode := controller.Mode(); mode != lastMode {
				logModeTransition(cycleNum, lastMode, mode)
				lastMode = mode
			}
		}
	}
}

// logModeTransition logs a mode change at a level matching its severity:
// EmergencyStop is always an error, Degraded/Rescue a warning, anything
// else informational.
func logModeTransition(cycle int64, from, to boiler.Mode) {
	attrs := []any{"cycle", cycle, "from", from, "to", to}
	switch to {
	case boiler.ModeEmergencyStop:
		log.Error("mode transition", attrs...)
	case boiler.ModeDegraded, boiler.ModeRescue:
		log.Warn("mode transition", attrs...)
	default:
		log.Info("mode transition", attrs...)
	}
}

// logDiagnoses warns on every fault newly detected this cycle.
func logDiagnoses(cycle int64, messages []boiler.Message) {
	for _, m := range messages {
		switch m.Kind {
		case boiler.KindLevelFailureDetection:
			log.Warn("fault detected", "cycle", cycle, "unit", "water level sensor")
		case boiler.KindSteamFailureDetection:
			log.Warn("fault detected", "cycle", cycle, "unit", "steam sensor")
		case boiler.KindPumpFailureDetectionN:
			log.Warn("fault detected", "cycle", cycle, "unit", "pump", "pump", m.Pump)
		case boiler.KindPumpControlFailureDetectionN:
			log.Warn("fault detected", "cycle", cycle, "unit", "pump controller", "pump", m.Pump)
		}
	}
}

// collectMailbox drains any mailboxes already queued on ch, waiting up to
// grace for one if none are queued yet. A cycle with no plant reading at
// all becomes an empty Mailbox, which Controller.Clock correctly treats as
// a transmission failure and escalates to EmergencyStop.
func collectMailbox(ch <-chan boiler.Mailbox, grace time.Duration) boiler.Mailbox {
	select {
	case mb := <-ch:
		return drainRest(ch, mb)
	case <-time.After(grace):
		return nil
	}
}

func drainRest(ch <-chan boiler.Mailbox, first boiler.Mailbox) boiler.Mailbox {
	for {
		select {
		case mb := <-ch:
			first = mb
		default:
			return first
		}
	}
}

func extractReadings(mb boiler.Mailbox) (water, steam float64) {
	for _, m := range mb {
		switch m.Kind {
		case boiler.KindLevelV:
			water = m.Double
		case boiler.KindSteamV:
			steam = m.Double
		}
	}
	return water, steam
}

func isConnected(transport mqtttransport.Transport) bool {
	if cs, ok := transport.(mqtttransport.ConnectionStatus); ok {
		return cs.IsConnected()
	}
	return false
}
