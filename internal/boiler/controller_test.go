package boiler

import "testing"

// readingMailbox builds the four required per-cycle messages for a
// controller configured with the given number of pumps.
func readingMailbox(water, steam float64, pumps, ctrls []bool) Mailbox {
	var msgs Mailbox
	msgs = append(msgs, WithDouble(KindLevelV, water))
	msgs = append(msgs, WithDouble(KindSteamV, steam))
	for i, on := range pumps {
		msgs = append(msgs, WithPumpBool(KindPumpStateNB, i, on))
	}
	for i, on := range ctrls {
		msgs = append(msgs, WithPumpBool(KindPumpControlStateNB, i, on))
	}
	return msgs
}

func TestNewPanicsOnInvalidConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New did not panic on invalid config")
		}
	}()
	New(Config{})
}

func TestExtractRejectsMissingMessage(t *testing.T) {
	c := New(testConfig())
	mb := Mailbox{WithDouble(KindLevelV, 500)} // missing STEAM_v and pump states
	if _, ok := c.extract(mb); ok {
		t.Error("extract() should fail on incomplete mailbox")
	}
}

func TestExtractRejectsDuplicateDouble(t *testing.T) {
	c := New(testConfig())
	mb := readingMailbox(500, 10, []bool{false, false}, []bool{false, false})
	mb = append(mb, WithDouble(KindLevelV, 501))
	if _, ok := c.extract(mb); ok {
		t.Error("extract() should fail on duplicate LEVEL_v")
	}
}

func TestExtractRejectsOutOfRangePumpIndex(t *testing.T) {
	c := New(testConfig())
	mb := Mailbox{
		WithDouble(KindLevelV, 500),
		WithDouble(KindSteamV, 10),
		WithPumpBool(KindPumpStateNB, 5, false),
		WithPumpBool(KindPumpStateNB, 1, false),
		WithPumpBool(KindPumpControlStateNB, 0, false),
		WithPumpBool(KindPumpControlStateNB, 1, false),
	}
	if _, ok := c.extract(mb); ok {
		t.Error("extract() should fail on an out-of-range pump index")
	}
}

func TestExtractAcceptsWellFormedReading(t *testing.T) {
	c := New(testConfig())
	mb := readingMailbox(500, 10, []bool{true, false}, []bool{true, false})
	r, ok := c.extract(mb)
	if !ok {
		t.Fatal("extract() failed on a well-formed mailbox")
	}
	if r.water != 500 || r.steam != 10 {
		t.Errorf("r = %+v, want water=500 steam=10", r)
	}
	if !r.pumps[0] || r.pumps[1] {
		t.Errorf("r.pumps = %v", r.pumps)
	}
}

func TestClockWaitingThenInitialisationSameCycle(t *testing.T) {
	c := New(testConfig())
	var out OutBatch
	mb := Mailbox{Simple(KindSteamBoilerWaiting)}
	mb = append(mb, readingMailbox(500, 0, []bool{false, false}, []bool{false, false})...)
	c.Clock(mb, &out)
	if c.Mode() != ModeInitialisation {
		t.Errorf("Mode() = %v, want Initialisation", c.Mode())
	}
}

func TestClockIgnoresReadingsBeforeWaiting(t *testing.T) {
	c := New(testConfig())
	var out OutBatch
	mb := readingMailbox(500, 0, []bool{false, false}, []bool{false, false})
	c.Clock(mb, &out)
	if c.Mode() != ModeWaiting {
		t.Errorf("Mode() = %v, want Waiting", c.Mode())
	}
	if len(out.Messages()) != 1 {
		t.Fatalf("got %d messages, want 1 (MODE_m only)", len(out.Messages()))
	}
}

func TestClockEmergencyStopOnMalformedMailbox(t *testing.T) {
	c := New(testConfig())
	var out OutBatch
	c.Clock(Mailbox{Simple(KindSteamBoilerWaiting)}, &out)
	if c.Mode() != ModeEmergencyStop {
		t.Errorf("Mode() = %v, want EmergencyStop", c.Mode())
	}
}

func TestClockEmergencyStopIsSticky(t *testing.T) {
	c := New(testConfig())
	var out OutBatch
	c.Clock(Mailbox{Simple(KindSteamBoilerWaiting)}, &out) // malformed, trips EmergencyStop
	out = OutBatch{}
	mb := readingMailbox(500, 10, []bool{false, false}, []bool{false, false})
	c.Clock(mb, &out)
	if c.Mode() != ModeEmergencyStop {
		t.Errorf("Mode() = %v, want EmergencyStop to persist", c.Mode())
	}
	msgs := out.Messages()
	if len(msgs) != 1 || msgs[0].Kind != KindModeM {
		t.Errorf("messages = %+v, want a single MODE_m", msgs)
	}
}

func TestSetPumpOnlyEmitsOnChange(t *testing.T) {
	c := New(testConfig())
	var out OutBatch
	c.setPump(0, true, &out)
	c.setPump(0, true, &out)
	if len(out.Messages()) != 1 {
		t.Errorf("got %d messages, want 1 (second setPump is a no-op)", len(out.Messages()))
	}
}

func TestReconcileModeDegradedToNormal(t *testing.T) {
	c := New(testConfig())
	c.mode = ModeDegraded
	c.steam.state = FailDetected
	c.reconcileMode()
	if c.mode != ModeDegraded {
		t.Errorf("Mode() = %v, want Degraded while a fault is still active", c.mode)
	}
	c.steam.clear()
	c.reconcileMode()
	if c.mode != ModeNormal {
		t.Errorf("Mode() = %v, want Normal once all faults clear", c.mode)
	}
}

func TestReconcileModeRescueToDegraded(t *testing.T) {
	c := New(testConfig())
	c.mode = ModeRescue
	c.water.state = FailDetected
	c.pump[0].state = FailDetected
	c.reconcileMode()
	if c.mode != ModeRescue {
		t.Errorf("Mode() = %v, want Rescue while water sensor is still faulty", c.mode)
	}
	c.water.clear()
	c.reconcileMode()
	if c.mode != ModeDegraded {
		t.Errorf("Mode() = %v, want Degraded (pump fault still active)", c.mode)
	}
}
