package plantio

import "github.com/sweeney/steamboiler/internal/boiler"

// FakeActuator records commanded relay states for test assertions.
type FakeActuator struct {
	Pumps [boiler.MaxPumps]bool
	Valve bool
	Closed bool

	// SetPumpError, if set, is returned by SetPump.
	SetPumpError error
}

// NewFakeActuator creates a FakeActuator for testing.
func NewFakeActuator() *FakeActuator {
	return &FakeActuator{}
}

// SetPump records the commanded pump state.
func (f *FakeActuator) SetPump(i int, on bool) error {
	if f.SetPumpError != nil {
		return f.SetPumpError
	}
	f.Pumps[i] = on
	return nil
}

// SetValve records the commanded valve state.
func (f *FakeActuator) SetValve(open bool) error {
	f.Valve = open
	return nil
}

// Close marks the actuator as closed.
func (f *FakeActuator) Close() error {
	f.Closed = true
	return nil
}
