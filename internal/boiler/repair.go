package boiler

// runHandshakes advances every unit's repair handshake by one step (§4.6).
// It is called once per cycle, right after diagnose, so a unit that was
// just set to FailDetected this same cycle emits its detection message
// and moves to WaitingFailAck without waiting for an extra cycle.
func (c *Controller) runHandshakes(incoming Mailbox, out *OutBatch) {
	c.stepUnit(&c.water, -1, KindLevelFailureDetection, KindLevelFailureAcknowledgement, KindLevelRepaired, KindLevelRepairedAcknowledgement, incoming, out, c.resetWaterStuck)
	c.stepUnit(&c.steam, -1, KindSteamFailureDetection, KindSteamOutcomeFailureAcknowledgement, KindSteamRepaired, KindSteamRepairedAcknowledgement, incoming, out, c.resetSteamStuck)
	for i := 0; i < c.cfg.Pumps; i++ {
		c.stepUnit(&c.pump[i], i, KindPumpFailureDetectionN, KindPumpFailureAcknowledgementN, KindPumpRepairedN, KindPumpRepairedAcknowledgementN, incoming, out, nil)
		c.stepUnit(&c.ctrl[i], i, KindPumpControlFailureDetectionN, KindPumpControlFailureAcknowledgementN, KindPumpControlRepairedN, KindPumpControlRepairedAcknowledgementN, incoming, out, nil)
	}
}

func (c *Controller) resetWaterStuck() { c.waterStuckCount = 0 }
func (c *Controller) resetSteamStuck() { c.steamStuckCount = 0 }

// stepUnit advances a single unit's handshake substate. pump is -1 for
// the water/steam sensors (which use parameterless messages) and the pump
// index otherwise. onRepaired, if non-nil, runs right after a successful
// repair clears the unit — used by the water/steam sensors to also clear
// their StuckCounter (§4.6: "clear stuck counters ... -> NoFail"), since a
// freshly repaired sensor may still report a held-over reading for a
// cycle or two and must not immediately re-trigger Stuck.
func (c *Controller) stepUnit(u *unit, pump int, detectionKind, ackKind, repairKind, repairAckKind Kind, incoming Mailbox, out *OutBatch, onRepaired func()) {
	switch u.state {
	case FailDetected:
		out.Send(detectionMessage(detectionKind, pump))
		u.state = FailWaitingAck
	case FailWaitingAck:
		if hasHandshakeMessage(incoming, ackKind, pump) {
			u.state = FailWaitingRepair
		}
	case FailWaitingRepair:
		if hasHandshakeMessage(incoming, repairKind, pump) {
			out.Send(detectionMessage(repairAckKind, pump))
			u.clear()
			if onRepaired != nil {
				onRepaired()
			}
		}
	}
}

func hasHandshakeMessage(incoming Mailbox, kind Kind, pump int) bool {
	if pump < 0 {
		return incoming.Has(kind)
	}
	return incoming.HasPump(kind, pump)
}

func detectionMessage(kind Kind, pump int) Message {
	if pump < 0 {
		return Simple(kind)
	}
	return WithPump(kind, pump)
}
