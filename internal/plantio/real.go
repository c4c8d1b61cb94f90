//go:build linux

package plantio

import (
	"fmt"

	"github.com/sweeney/steamboiler/internal/boiler"
	"github.com/warthog618/go-gpiocdev"
)

// RealActuator drives pump and valve relays on actual hardware using the
// Linux GPIO character device.
type RealActuator struct {
	chip  *gpiocdev.Chip
	pumps [boiler.MaxPumps]*gpiocdev.Line
	valve *gpiocdev.Line
}

// NewRealActuator opens gpiochip0 and requests one output line per pump
// (pumpBase..pumpBase+n-1) plus the valve line, all initially de-energized.
func NewRealActuator(pumpBase, valvePin, pumps int) (*RealActuator, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	a := &RealActuator{chip: chip}
	for i := 0; i < pumps; i++ {
		line, err := chip.RequestLine(pumpBase+i, gpiocdev.AsOutput(0))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("request pump %d line: %w", i, err)
		}
		a.pumps[i] = line
	}

	valve, err := chip.RequestLine(valvePin, gpiocdev.AsOutput(0))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("request valve line: %w", err)
	}
	a.valve = valve

	return a, nil
}

// SetPump drives pump i's relay line.
func (a *RealActuator) SetPump(i int, on bool) error {
	if i < 0 || i >= len(a.pumps) || a.pumps[i] == nil {
		return fmt.Errorf("plantio: pump %d not configured", i)
	}
	return a.pumps[i].SetValue(boolToLine(on))
}

// SetValve drives the feed valve relay line.
func (a *RealActuator) SetValve(open bool) error {
	if a.valve == nil {
		return fmt.Errorf("plantio: valve not configured")
	}
	return a.valve.SetValue(boolToLine(open))
}

// Close de-energizes every relay and releases GPIO resources.
func (a *RealActuator) Close() error {
	var errs []error
	for _, line := range a.pumps {
		if line == nil {
			continue
		}
		if err := line.SetValue(0); err != nil {
			errs = append(errs, err)
		}
		if err := line.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.valve != nil {
		if err := a.valve.SetValue(0); err != nil {
			errs = append(errs, err)
		}
		if err := a.valve.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.chip != nil {
		if err := a.chip.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func boolToLine(on bool) int {
	if on {
		return 1
	}
	return 0
}
