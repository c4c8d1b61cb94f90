package boiler

// runInitialisation implements §4.2: bring water into [N1,N2] by filling
// or emptying, then hold there announcing PROGRAM_READY until the plant
// confirms PHYSICAL_UNITS_READY.
func (c *Controller) runInitialisation(r reading, out *OutBatch) {
	if r.steam != 0 {
		c.mode = ModeEmergencyStop
		return
	}
	if r.water < 0 || r.water > c.cfg.Capacity {
		c.mode = ModeEmergencyStop
		return
	}
	if c.waterStuckCount >= stuckThreshold {
		c.mode = ModeEmergencyStop
		return
	}

	switch {
	case r.water >= c.cfg.NormalMax:
		c.closeAllPumps(out)
		if !c.valveOpen {
			c.setValve(true, out)
		}
		if c.haveReading && r.water >= c.prevWater {
			c.initHighStreak++
		} else {
			c.initHighStreak = 0
		}
		if c.initHighStreak >= 2 {
			c.mode = ModeEmergencyStop
			return
		}
	case r.water <= c.cfg.NormalMin:
		c.initHighStreak = 0
		c.openAllPumps(out)
		if c.valveOpen {
			c.setValve(false, out)
		}
	default:
		c.initHighStreak = 0
		c.closeAllPumps(out)
		if c.valveOpen {
			c.setValve(false, out)
		}
		c.initDone = true
	}

	if c.initDone {
		out.Send(Simple(KindProgramReady))
	}
}

// runNormal operates pumps from the observed water level (§4.1 step 4,
// Normal).
func (c *Controller) runNormal(r reading, out *OutBatch) {
	c.selectPumps(r.water, r.steam, out)
}

// runDegraded operates pumps from the observed water level; the
// Degraded->Normal recovery check already ran in reconcileMode before act
// was called, so this only ever runs while at least one non-water fault
// is still active.
func (c *Controller) runDegraded(r reading, out *OutBatch) {
	c.selectPumps(r.water, r.steam, out)
}

// runRescue operates pumps from the estimated water level derived from
// the previous predicted band (§4.3 Rescue rule): if the water level last
// trusted (the reading at the moment the water sensor's fault was first
// detected) was below H, use the previous cycle's predicted minimum,
// otherwise its predicted maximum. The "last observed" reading is frozen
// at rescue entry rather than re-read every cycle, since the sensor is the
// very thing under suspicion and its readings cannot be trusted again
// until it is repaired.
func (c *Controller) runRescue(r reading, out *OutBatch) {
	estimate := c.predMax
	if c.rescueSide == rescueSideMin {
		estimate = c.predMin
	}
	c.selectPumps(estimate, r.steam, out)
}

// enterRescue freezes the rescue-side decision and switches mode.
func (c *Controller) enterRescue(water float64) {
	if water < c.cfg.midNormal() {
		c.rescueSide = rescueSideMin
	} else {
		c.rescueSide = rescueSideMax
	}
	c.mode = ModeRescue
}
