// Package wire is the JSON codec for boiler.Message batches exchanged over
// MQTT, mirroring the daemon's existing Payload/FormatPayload convention
// but carrying the controller's typed message union instead of a fixed CH/HW
// event shape.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/sweeney/steamboiler/internal/boiler"
)

// Envelope is the top-level JSON document published on the controller and
// plant topics: a cycle-numbered batch of messages produced by one cycle.
type Envelope struct {
	Cycle    int64     `json:"cycle"`
	Messages []wireMsg `json:"messages"`
}

type wireMsg struct {
	Kind   string  `json:"kind"`
	Pump   int     `json:"pump,omitempty"`
	Double float64 `json:"double,omitempty"`
	Bool   bool    `json:"bool,omitempty"`
	Mode   string  `json:"mode,omitempty"`
}

var kindByName = buildKindIndex()

func buildKindIndex() map[string]boiler.Kind {
	index := make(map[string]boiler.Kind)
	for k := boiler.KindSteamBoilerWaiting; k <= boiler.KindPumpControlRepairedAcknowledgementN; k++ {
		index[k.String()] = k
	}
	return index
}

var modeByName = buildModeIndex()

func buildModeIndex() map[string]boiler.Mode {
	index := make(map[string]boiler.Mode)
	for m := boiler.ModeWaiting; m <= boiler.ModeEmergencyStop; m++ {
		index[m.String()] = m
	}
	return index
}

// Encode serializes a cycle's outbound messages into an Envelope.
func Encode(cycle int64, messages []boiler.Message) ([]byte, error) {
	env := Envelope{Cycle: cycle, Messages: make([]wireMsg, len(messages))}
	for i, m := range messages {
		env.Messages[i] = wireMsg{
			Kind:   m.Kind.String(),
			Pump:   m.Pump,
			Double: m.Double,
			Bool:   m.Bool,
			Mode:   m.ModeValue.String(),
		}
	}
	return json.Marshal(env)
}

// Decode parses an Envelope published by the peer back into a Mailbox ready
// for Controller.Clock.
func Decode(data []byte) (boiler.Mailbox, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("wire: decode envelope: %w", err)
	}
	mb := make(boiler.Mailbox, len(env.Messages))
	for i, wm := range env.Messages {
		kind, ok := kindByName[wm.Kind]
		if !ok {
			return nil, fmt.Errorf("wire: unknown message kind %q", wm.Kind)
		}
		mode := boiler.ModeWaiting
		if wm.Mode != "" {
			mode, ok = modeByName[wm.Mode]
			if !ok {
				return nil, fmt.Errorf("wire: unknown mode %q", wm.Mode)
			}
		}
		mb[i] = boiler.Message{Kind: kind, Pump: wm.Pump, Double: wm.Double, Bool: wm.Bool, ModeValue: mode}
	}
	return mb, nil
}
