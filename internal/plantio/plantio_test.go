package plantio

import (
	"errors"
	"testing"

	"github.com/sweeney/steamboiler/internal/boiler"
)

var errFakeSetPump = errors.New("fake set pump failure")

func TestApplyDrivesPumpsAndTogglesValve(t *testing.T) {
	a := NewFakeActuator()
	valveOpen := false

	batch := []boiler.Message{
		boiler.WithPump(boiler.KindOpenPumpN, 0),
		boiler.WithPump(boiler.KindClosePumpN, 1),
		boiler.Simple(boiler.KindValve),
		boiler.WithMode(boiler.ModeNormal), // ignored by Apply
	}

	if err := Apply(a, batch, &valveOpen); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !a.Pumps[0] {
		t.Error("pump 0 should be on")
	}
	if a.Pumps[1] {
		t.Error("pump 1 should be off")
	}
	if !valveOpen {
		t.Error("valve should have toggled open")
	}
}

func TestApplyTogglesValveClosedOnSecondMessage(t *testing.T) {
	a := NewFakeActuator()
	valveOpen := true

	batch := []boiler.Message{boiler.Simple(boiler.KindValve)}
	if err := Apply(a, batch, &valveOpen); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if valveOpen {
		t.Error("valve should have toggled closed")
	}
}

func TestApplyPropagatesSetPumpError(t *testing.T) {
	a := NewFakeActuator()
	a.SetPumpError = errFakeSetPump
	valveOpen := false

	batch := []boiler.Message{boiler.WithPump(boiler.KindOpenPumpN, 0)}
	if err := Apply(a, batch, &valveOpen); err != errFakeSetPump {
		t.Errorf("Apply() error = %v, want errFakeSetPump", err)
	}
}
