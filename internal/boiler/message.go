package boiler

// Kind discriminates the typed message variants exchanged between the
// plant and the controller, per the external interfaces in the
// specification. A Message carries at most one of its typed parameters,
// selected by Kind.
type Kind int

const (
	// Inbound kinds.
	KindSteamBoilerWaiting Kind = iota
	KindPhysicalUnitsReady
	KindLevelV
	KindSteamV
	KindPumpStateNB
	KindPumpControlStateNB
	KindLevelFailureAcknowledgement
	KindLevelRepaired
	KindSteamOutcomeFailureAcknowledgement
	KindSteamRepaired
	KindPumpFailureAcknowledgementN
	KindPumpRepairedN
	KindPumpControlFailureAcknowledgementN
	KindPumpControlRepairedN

	// Outbound kinds.
	KindModeM
	KindProgramReady
	KindValve
	KindOpenPumpN
	KindClosePumpN
	KindLevelFailureDetection
	KindSteamFailureDetection
	KindPumpFailureDetectionN
	KindPumpControlFailureDetectionN
	KindLevelRepairedAcknowledgement
	KindSteamRepairedAcknowledgement
	KindPumpRepairedAcknowledgementN
	KindPumpControlRepairedAcknowledgementN
)

func (k Kind) String() string {
	switch k {
	case KindSteamBoilerWaiting:
		return "STEAM_BOILER_WAITING"
	case KindPhysicalUnitsReady:
		return "PHYSICAL_UNITS_READY"
	case KindLevelV:
		return "LEVEL_v"
	case KindSteamV:
		return "STEAM_v"
	case KindPumpStateNB:
		return "PUMP_STATE_n_b"
	case KindPumpControlStateNB:
		return "PUMP_CONTROL_STATE_n_b"
	case KindLevelFailureAcknowledgement:
		return "LEVEL_FAILURE_ACKNOWLEDGEMENT"
	case KindLevelRepaired:
		return "LEVEL_REPAIRED"
	case KindSteamOutcomeFailureAcknowledgement:
		return "STEAM_OUTCOME_FAILURE_ACKNOWLEDGEMENT"
	case KindSteamRepaired:
		return "STEAM_REPAIRED"
	case KindPumpFailureAcknowledgementN:
		return "PUMP_FAILURE_ACKNOWLEDGEMENT_n"
	case KindPumpRepairedN:
		return "PUMP_REPAIRED_n"
	case KindPumpControlFailureAcknowledgementN:
		return "PUMP_CONTROL_FAILURE_ACKNOWLEDGEMENT_n"
	case KindPumpControlRepairedN:
		return "PUMP_CONTROL_REPAIRED_n"
	case KindModeM:
		return "MODE_m"
	case KindProgramReady:
		return "PROGRAM_READY"
	case KindValve:
		return "VALVE"
	case KindOpenPumpN:
		return "OPEN_PUMP_n"
	case KindClosePumpN:
		return "CLOSE_PUMP_n"
	case KindLevelFailureDetection:
		return "LEVEL_FAILURE_DETECTION"
	case KindSteamFailureDetection:
		return "STEAM_FAILURE_DETECTION"
	case KindPumpFailureDetectionN:
		return "PUMP_FAILURE_DETECTION_n"
	case KindPumpControlFailureDetectionN:
		return "PUMP_CONTROL_FAILURE_DETECTION_n"
	case KindLevelRepairedAcknowledgement:
		return "LEVEL_REPAIRED_ACKNOWLEDGEMENT"
	case KindSteamRepairedAcknowledgement:
		return "STEAM_REPAIRED_ACKNOWLEDGEMENT"
	case KindPumpRepairedAcknowledgementN:
		return "PUMP_REPAIRED_ACKNOWLEDGEMENT_n"
	case KindPumpControlRepairedAcknowledgementN:
		return "PUMP_CONTROL_REPAIRED_ACKNOWLEDGEMENT_n"
	default:
		return "UNKNOWN"
	}
}

// Message is a single typed event exchanged between plant and controller.
// Pump carries the pump/controller index for the "_n" kinds and is -1
// otherwise; Double, Bool, and ModeValue carry the remaining parameter
// types.
type Message struct {
	Kind      Kind
	Pump      int
	Double    float64
	Bool      bool
	ModeValue Mode
}

// Simple constructs a parameterless message (e.g. PROGRAM_READY, VALVE).
func Simple(kind Kind) Message {
	return Message{Kind: kind, Pump: -1}
}

// WithDouble constructs a message carrying a double parameter.
func WithDouble(kind Kind, v float64) Message {
	return Message{Kind: kind, Pump: -1, Double: v}
}

// WithPump constructs a message carrying only a pump/controller index.
func WithPump(kind Kind, pump int) Message {
	return Message{Kind: kind, Pump: pump}
}

// WithPumpBool constructs a message carrying a pump index and a boolean
// on/off parameter (PUMP_STATE_n_b, PUMP_CONTROL_STATE_n_b).
func WithPumpBool(kind Kind, pump int, on bool) Message {
	return Message{Kind: kind, Pump: pump, Bool: on}
}

// WithMode constructs a MODE_m message.
func WithMode(mode Mode) Message {
	return Message{Kind: KindModeM, Pump: -1, ModeValue: mode}
}

// Mailbox is an ordered, read-by-index batch of inbound messages for one
// cycle. It is borrowed by Clock for the duration of a single call and
// must not be retained afterward.
type Mailbox []Message

// Has reports whether any message of the given parameterless kind is
// present.
func (m Mailbox) Has(kind Kind) bool {
	for _, msg := range m {
		if msg.Kind == kind {
			return true
		}
	}
	return false
}

// HasPump reports whether a message of the given kind and pump index is
// present (used for per-pump acknowledgement/repair lookups).
func (m Mailbox) HasPump(kind Kind, pump int) bool {
	for _, msg := range m {
		if msg.Kind == kind && msg.Pump == pump {
			return true
		}
	}
	return false
}

// onlyDouble returns the double parameter of the single message of the
// given kind. ok is false if there is not exactly one match.
func (m Mailbox) onlyDouble(kind Kind) (v float64, ok bool) {
	found := false
	for _, msg := range m {
		if msg.Kind == kind {
			if found {
				return 0, false
			}
			v, found = msg.Double, true
		}
	}
	return v, found
}

// pumpBools extracts exactly one boolean reading per pump index in
// [0,count) for the given kind. ok is false if any index is missing or
// duplicated, or an out-of-range index appears.
func (m Mailbox) pumpBools(kind Kind, count int) (out [MaxPumps]bool, ok bool) {
	var seen [MaxPumps]bool
	n := 0
	for _, msg := range m {
		if msg.Kind != kind {
			continue
		}
		if msg.Pump < 0 || msg.Pump >= count || seen[msg.Pump] {
			return out, false
		}
		seen[msg.Pump] = true
		out[msg.Pump] = msg.Bool
		n++
	}
	if n != count {
		return out, false
	}
	return out, true
}

// OutBatch is the write-only sink for outbound messages produced during a
// single cycle. The zero value is ready to use.
type OutBatch struct {
	messages []Message
}

// Send appends a message to the batch.
func (o *OutBatch) Send(msg Message) {
	o.messages = append(o.messages, msg)
}

// Messages returns the messages sent so far, in send order.
func (o *OutBatch) Messages() []Message {
	return o.messages
}
