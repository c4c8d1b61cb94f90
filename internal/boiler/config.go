// Package boiler implements the cyclic steam-boiler controller: the
// mode/state machine, the pump-selection prediction engine, and the fault
// diagnosis and repair-handshake sub-protocol. The package has no external
// dependencies — it is pure logic operating over an in-memory mailbox, and
// every operation is a deterministic function of its inputs and the
// controller's own state.
package boiler

import "fmt"

// MaxPumps bounds the number of pumps a Config may describe. The data model
// fixes P at 1..6, so all per-pump state lives in fixed-size arrays rather
// than slices — there is no heap allocation for pump bookkeeping in steady
// state.
const MaxPumps = 6

// Config holds the immutable boiler characteristics for a run. All fields
// are set once at construction and never mutated afterward.
type Config struct {
	// Capacity is the maximum physical water capacity C (litres).
	Capacity float64
	// NormalMin and NormalMax (N1, N2) bound the normal operating band.
	NormalMin float64
	NormalMax float64
	// LimitMin and LimitMax (M1, M2) are the absolute safety limits.
	LimitMin float64
	LimitMax float64
	// MaxSteamRate is the maximum steam production rate W (L/s).
	MaxSteamRate float64
	// Pumps is the number of pumps P, 1..MaxPumps.
	Pumps int
	// PumpCapacity holds the per-pump output rate (L/s) for pump i, indices
	// 0..Pumps-1. Capacities need not be equal across pumps.
	PumpCapacity [MaxPumps]float64
}

// NewConfig builds a Config from a pump-capacity slice, which may have
// length 1..MaxPumps. It does not validate; call Validate separately.
func NewConfig(capacity, n1, n2, m1, m2, maxSteam float64, pumpCapacity []float64) Config {
	cfg := Config{
		Capacity:     capacity,
		NormalMin:    n1,
		NormalMax:    n2,
		LimitMin:     m1,
		LimitMax:     m2,
		MaxSteamRate: maxSteam,
		Pumps:        len(pumpCapacity),
	}
	copy(cfg.PumpCapacity[:], pumpCapacity)
	return cfg
}

// Validate checks the Config invariants from the data model:
// M1<N1<N2<M2<C, 1<=P<=6, and every pump capacity is positive.
func (c Config) Validate() error {
	if !(c.LimitMin < c.NormalMin && c.NormalMin < c.NormalMax && c.NormalMax < c.LimitMax && c.LimitMax < c.Capacity) {
		return fmt.Errorf("boiler: band invariant violated: need M1<N1<N2<M2<C, got M1=%v N1=%v N2=%v M2=%v C=%v",
			c.LimitMin, c.NormalMin, c.NormalMax, c.LimitMax, c.Capacity)
	}
	if c.Pumps < 1 || c.Pumps > MaxPumps {
		return fmt.Errorf("boiler: pump count %d out of range [1,%d]", c.Pumps, MaxPumps)
	}
	if c.MaxSteamRate <= 0 {
		return fmt.Errorf("boiler: maximum steam rate must be positive, got %v", c.MaxSteamRate)
	}
	for i := 0; i < c.Pumps; i++ {
		if c.PumpCapacity[i] <= 0 {
			return fmt.Errorf("boiler: pump %d capacity must be positive, got %v", i, c.PumpCapacity[i])
		}
	}
	return nil
}

// capSum returns the combined capacity of the first k pumps (index order),
// used by the prediction engine.
func (c Config) capSum(k int) float64 {
	var sum float64
	for i := 0; i < k; i++ {
		sum += c.PumpCapacity[i]
	}
	return sum
}

// midNormal returns H, the midpoint of the normal band.
func (c Config) midNormal() float64 {
	return c.NormalMin + (c.NormalMax-c.NormalMin)/2
}
