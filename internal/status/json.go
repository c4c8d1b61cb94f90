package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Mode          string     `json:"mode"`
	Cycle         int64      `json:"cycle"`
	Water         float64    `json:"water"`
	Steam         float64    `json:"steam"`
	ValveOpen     bool       `json:"valve_open"`
	Pumps         []PumpJSON `json:"pumps"`
	WaterUnit     UnitJSON   `json:"water_unit"`
	SteamUnit     UnitJSON   `json:"steam_unit"`
	PredictedBand *BandJSON  `json:"predicted_band,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Config        ConfigJSON `json:"config"`
}

// PumpJSON is the JSON representation of one pump and its controller.
type PumpJSON struct {
	Index   int      `json:"index"`
	On      bool     `json:"on"`
	Pump    UnitJSON `json:"pump"`
	Control UnitJSON `json:"control"`
}

// UnitJSON is the JSON representation of a physical unit's handshake state.
type UnitJSON struct {
	FailState   string `json:"fail_state"`
	FailureType string `json:"failure_type"`
}

// BandJSON is the JSON representation of the predicted water-level band.
type BandJSON struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	CycleMs     int64  `json:"cycle_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Mode:      snap.Mode,
		Cycle:     snap.Cycle,
		Water:     snap.Water,
		Steam:     snap.Steam,
		ValveOpen: snap.ValveOpen,
		WaterUnit: UnitJSON{FailState: snap.WaterUnit.FailState, FailureType: snap.WaterUnit.FailureType},
		SteamUnit: UnitJSON{FailState: snap.SteamUnit.FailState, FailureType: snap.SteamUnit.FailureType},

		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			CycleMs:     snap.Config.CycleMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}

	for i := 0; i < snap.Pumps; i++ {
		inner.Pumps = append(inner.Pumps, PumpJSON{
			Index:   i,
			On:      snap.PumpOn[i],
			Pump:    UnitJSON{FailState: snap.PumpUnits[i].FailState, FailureType: snap.PumpUnits[i].FailureType},
			Control: UnitJSON{FailState: snap.CtrlUnits[i].FailState, FailureType: snap.CtrlUnits[i].FailureType},
		})
	}

	if snap.HavePred {
		inner.PredictedBand = &BandJSON{Min: snap.PredMin, Max: snap.PredMax}
	}

	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
