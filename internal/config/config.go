// Package config resolves the CLI flags for the boiler daemon and simulated
// plant into validated runtime configuration, mirroring the flag layout the
// daemon has always used (cycle/broker/http/heartbeat) but scaled to the
// boiler's richer parameter set.
package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sweeney/steamboiler/internal/boiler"
	"github.com/sweeney/steamboiler/internal/plant"
)

// Daemon holds everything cmd/boilerd needs to start: the physical
// characteristics of the boiler (validated into a boiler.Config) plus the
// ambient daemon settings (cycle length, transport, HTTP).
type Daemon struct {
	Boiler boiler.Config

	Cycle     time.Duration
	Broker    string
	HTTPAddr  string
	Heartbeat time.Duration
}

// Plant holds the settings for the simulated plant binary: the same
// physical characteristics (it must agree with the controller) plus the
// faults to script and the broker to dial.
type Plant struct {
	Boiler boiler.Config

	Cycle        time.Duration
	Broker       string
	InitialWater float64
	Seed         int64
	Faults       []plant.ScheduledFault
}

// ParseDaemon parses os.Args-style flags (via the given FlagSet, normally
// flag.CommandLine) into a Daemon config. args excludes the program name,
// matching flag.Parse's convention.
func ParseDaemon(fs *flag.FlagSet, args []string) (Daemon, error) {
	capacity := fs.Float64("capacity", 1000, "maximum water capacity C (litres)")
	n1 := fs.Float64("normal-min", 400, "lower normal-band limit N1 (litres)")
	n2 := fs.Float64("normal-max", 600, "upper normal-band limit N2 (litres)")
	m1 := fs.Float64("limit-min", 100, "lower safety limit M1 (litres)")
	m2 := fs.Float64("limit-max", 900, "upper safety limit M2 (litres)")
	maxSteam := fs.Float64("max-steam-rate", 30, "maximum steam production rate W (L/s)")
	pumps := fs.String("pumps", "10,10,10,10", "comma-separated per-pump output capacity (L/s)")
	cycle := fs.Duration("cycle", 5*time.Second, "controller cycle length")
	broker := fs.String("broker", "tcp://127.0.0.1:1883", "MQTT broker address")
	httpAddr := fs.String("http", ":8080", "HTTP status address (empty to disable)")
	heartbeat := fs.Duration("heartbeat", 15*time.Minute, "heartbeat interval (0 to disable)")

	if err := fs.Parse(args); err != nil {
		return Daemon{}, err
	}

	pumpCaps, err := parsePumps(*pumps)
	if err != nil {
		return Daemon{}, fmt.Errorf("config: %w", err)
	}

	cfg := boiler.NewConfig(*capacity, *n1, *n2, *m1, *m2, *maxSteam, pumpCaps)
	if err := cfg.Validate(); err != nil {
		return Daemon{}, fmt.Errorf("config: %w", err)
	}

	return Daemon{
		Boiler:    cfg,
		Cycle:     *cycle,
		Broker:    *broker,
		HTTPAddr:  *httpAddr,
		Heartbeat: *heartbeat,
	}, nil
}

// ParsePlant parses the simulated-plant binary's flags.
func ParsePlant(fs *flag.FlagSet, args []string) (Plant, error) {
	capacity := fs.Float64("capacity", 1000, "maximum water capacity C (litres)")
	n1 := fs.Float64("normal-min", 400, "lower normal-band limit N1 (litres)")
	n2 := fs.Float64("normal-max", 600, "upper normal-band limit N2 (litres)")
	m1 := fs.Float64("limit-min", 100, "lower safety limit M1 (litres)")
	m2 := fs.Float64("limit-max", 900, "upper safety limit M2 (litres)")
	maxSteam := fs.Float64("max-steam-rate", 30, "maximum steam production rate W (L/s)")
	pumps := fs.String("pumps", "10,10,10,10", "comma-separated per-pump output capacity (L/s)")
	cycle := fs.Duration("cycle", 5*time.Second, "plant cycle length, must match the controller")
	broker := fs.String("broker", "tcp://127.0.0.1:1883", "MQTT broker address")
	initialWater := fs.Float64("initial-water", 500, "starting water level (litres)")
	seed := fs.Int64("seed", 1, "random seed for steam-rate fluctuation")
	faults := fs.String("faults", "", "comma-separated fault schedule, cycle:kind[:pump][:until]")

	if err := fs.Parse(args); err != nil {
		return Plant{}, err
	}

	pumpCaps, err := parsePumps(*pumps)
	if err != nil {
		return Plant{}, fmt.Errorf("config: %w", err)
	}

	cfg := boiler.NewConfig(*capacity, *n1, *n2, *m1, *m2, *maxSteam, pumpCaps)
	if err := cfg.Validate(); err != nil {
		return Plant{}, fmt.Errorf("config: %w", err)
	}

	scheduledFaults, err := parseFaults(*faults)
	if err != nil {
		return Plant{}, fmt.Errorf("config: %w", err)
	}

	return Plant{
		Boiler:       cfg,
		Cycle:        *cycle,
		Broker:       *broker,
		InitialWater: *initialWater,
		Seed:         *seed,
		Faults:       scheduledFaults,
	}, nil
}

var faultKindByName = map[string]plant.FaultKind{
	"water-stuck":    plant.FaultWaterStuck,
	"steam-stuck":    plant.FaultSteamStuck,
	"pump-stuck":     plant.FaultPumpStuck,
	"control-broken": plant.FaultControlBroken,
}

// parseFaults parses a comma-separated fault schedule. Each entry has the
// form "cycle:kind[:pump][:until]": pump is required for pump-stuck and
// control-broken and ignored otherwise; until, if given, is the first
// cycle the fault no longer applies (0/omitted means it never expires).
func parseFaults(s string) ([]plant.ScheduledFault, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []plant.ScheduledFault
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Split(entry, ":")
		if len(fields) < 2 {
			return nil, fmt.Errorf("invalid fault %q: want cycle:kind[:pump][:until]", entry)
		}
		cycle, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid fault cycle %q: %w", fields[0], err)
		}
		kind, ok := faultKindByName[fields[1]]
		if !ok {
			return nil, fmt.Errorf("invalid fault kind %q", fields[1])
		}
		f := plant.ScheduledFault{Cycle: cycle, Kind: kind}
		if kind == plant.FaultPumpStuck || kind == plant.FaultControlBroken {
			if len(fields) < 3 {
				return nil, fmt.Errorf("fault %q requires a pump index", entry)
			}
			pump, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("invalid fault pump %q: %w", fields[2], err)
			}
			f.Pump = pump
			if len(fields) > 3 {
				until, err := strconv.ParseInt(fields[3], 10, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid fault until %q: %w", fields[3], err)
				}
				f.Until = until
			}
		} else if len(fields) > 2 {
			until, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid fault until %q: %w", fields[2], err)
			}
			f.Until = until
		}
		out = append(out, f)
	}
	return out, nil
}

func parsePumps(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	caps := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid pump capacity %q: %w", f, err)
		}
		caps = append(caps, v)
	}
	if len(caps) == 0 {
		return nil, fmt.Errorf("no pump capacities given")
	}
	return caps, nil
}
