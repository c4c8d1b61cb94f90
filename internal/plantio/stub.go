//go:build !linux

package plantio

import "errors"

// RealActuator is not available on non-Linux platforms.
type RealActuator struct{}

// NewRealActuator returns an error on non-Linux platforms.
func NewRealActuator(pumpBase, valvePin, pumps int) (*RealActuator, error) {
	return nil, errors.New("plantio: not supported on this platform (requires Linux)")
}

// SetPump is not implemented on non-Linux platforms.
func (a *RealActuator) SetPump(i int, on bool) error {
	return errors.New("plantio: not supported")
}

// SetValve is not implemented on non-Linux platforms.
func (a *RealActuator) SetValve(open bool) error {
	return errors.New("plantio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (a *RealActuator) Close() error {
	return nil
}
