package boiler

// waterCandidate computes the candidate FailureType for the water sensor
// from this cycle's reading, ignoring handshake state (the caller gates
// on water.state == FailNone before using the result).
func (c *Controller) waterCandidate(r reading) FailureType {
	if r.water < 0 || r.water > c.cfg.Capacity {
		return FailureOutOfBounds
	}
	if c.waterStuckCount >= stuckThreshold {
		return FailureStuck
	}
	if c.havePred {
		if r.water < c.predMin-0.5 {
			return FailureBelowPredicted
		}
		if r.water > c.predMax+0.5 {
			return FailureAbovePredicted
		}
	}
	return FailureNone
}

// steamCandidate computes the candidate FailureType for the steam sensor.
// A decrease from the previous reading is treated as a failure, matching
// the source material (Open Question a in the specification): this may
// reject a legitimate boiler cool-down, but the source's behavior is
// preserved rather than silently "fixed".
func (c *Controller) steamCandidate(r reading) FailureType {
	if r.steam < 0 || r.steam > c.cfg.MaxSteamRate {
		return FailureOutOfBounds
	}
	if c.haveReading && r.steam < c.prevSteam {
		return FailureOutOfBounds
	}
	if c.steamStuckCount >= stuckThreshold && r.steam != c.cfg.MaxSteamRate {
		return FailureStuck
	}
	return FailureNone
}

// pumpCandidate and ctrlCandidate flag a Stuck candidate when the
// reported state disagrees with the commanded state (§4.5).
func (c *Controller) pumpCandidate(i int, r reading) FailureType {
	if r.pumps[i] != c.pumpOn[i] {
		return FailureStuck
	}
	return FailureNone
}

func (c *Controller) ctrlCandidate(i int, r reading) FailureType {
	if r.ctrls[i] != c.pumpOn[i] {
		return FailureStuck
	}
	return FailureNone
}

// diagnose runs the per-cycle fault classification and cross-unit
// disambiguation of §4.5, calling detect() on every unit newly attributed
// a failure and adjusting the mode accordingly. It only evaluates
// candidates for units currently NoFail — a unit already mid-handshake is
// not re-diagnosed.
func (c *Controller) diagnose(r reading, out *OutBatch) {
	var waterCand FailureType
	if c.water.state == FailNone {
		waterCand = c.waterCandidate(r)
	}
	var steamCand FailureType
	if c.steam.state == FailNone {
		steamCand = c.steamCandidate(r)
	}

	var pumpCand, ctrlCand [MaxPumps]FailureType
	for i := 0; i < c.cfg.Pumps; i++ {
		if c.pump[i].state == FailNone {
			pumpCand[i] = c.pumpCandidate(i, r)
		}
		if c.ctrl[i].state == FailNone {
			ctrlCand[i] = c.ctrlCandidate(i, r)
		}
	}

	wAmbiguous := waterCand == FailureAbovePredicted || waterCand == FailureBelowPredicted

	var pumpAttrib, ctrlAttrib [MaxPumps]bool
	for i := 0; i < c.cfg.Pumps; i++ {
		pFaulty := pumpCand[i] != FailureNone
		cFaulty := ctrlCand[i] != FailureNone
		if !pFaulty && !cFaulty {
			continue
		}

		if wAmbiguous {
			// The water reading's deviation from the predicted band may
			// itself be a side effect of a stuck pump or controller: a
			// pump stuck open pushes water Above the predicted band while
			// commanded Off; stuck closed pushes it Below while commanded
			// On. Attribute the unit that explains the deviation, not the
			// water sensor.
			switch {
			case waterCand == FailureAbovePredicted && !c.pumpOn[i]:
				pumpAttrib[i] = true
			case waterCand == FailureBelowPredicted && c.pumpOn[i]:
				pumpAttrib[i] = true
			default:
				// Direction doesn't match the disambiguation rule for
				// this pump; fall through to the direct attribution below.
				c.attributeDirect(pFaulty, cFaulty, &pumpAttrib[i], &ctrlAttrib[i])
			}
			continue
		}

		c.attributeDirect(pFaulty, cFaulty, &pumpAttrib[i], &ctrlAttrib[i])
	}

	otherFaults := 0
	for i := 0; i < c.cfg.Pumps; i++ {
		if c.pump[i].state != FailNone || pumpAttrib[i] {
			otherFaults++
		}
		if c.ctrl[i].state != FailNone || ctrlAttrib[i] {
			otherFaults++
		}
	}

	waterNew := c.water.state == FailNone && waterCand != FailureNone && otherFaults == 0
	steamNew := c.steam.state == FailNone && steamCand != FailureNone

	if waterNew && steamNew {
		// Two simultaneous unrecoverable faults: neither is recorded as
		// detected, the controller goes straight to EmergencyStop.
		c.mode = ModeEmergencyStop
		return
	}

	degradedTrigger := false

	if waterNew {
		c.water.detect(waterCand)
		c.enterRescue(r.water)
	}
	if steamNew {
		c.steam.detect(steamCand)
		degradedTrigger = true
	}
	for i := 0; i < c.cfg.Pumps; i++ {
		if pumpAttrib[i] && c.pump[i].detect(FailureStuck) {
			degradedTrigger = true
		}
		if ctrlAttrib[i] && c.ctrl[i].detect(FailureStuck) {
			degradedTrigger = true
		}
	}

	if degradedTrigger && c.mode != ModeRescue {
		c.mode = ModeDegraded
	}
}

// attributeDirect applies the unambiguous disambiguation rows: a pump
// mismatch alone blames the pump, a controller mismatch alone blames the
// controller, and a mismatch on both blames the pump (a pump stuck in
// place will typically also desynchronize its controller's report).
func (c *Controller) attributeDirect(pFaulty, cFaulty bool, pumpAttrib, ctrlAttrib *bool) {
	switch {
	case pFaulty && !cFaulty:
		*pumpAttrib = true
	case !pFaulty && cFaulty:
		*ctrlAttrib = true
	case pFaulty && cFaulty:
		*pumpAttrib = true
	}
}
