package web

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/sweeney/steamboiler/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"pumpRange": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	},
	"lower": strings.ToLower,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Boiler Controller</title>
<style>
body { font-family: monospace; max-width: 640px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.mode-normal { color: green; font-weight: bold; }
.mode-degraded { color: orange; font-weight: bold; }
.mode-rescue { color: orange; font-weight: bold; }
.mode-emergency_stop { color: red; font-weight: bold; }
.mode-initialisation, .mode-waiting { color: #888; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.nofail { color: green; }
.faulty { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Boiler Controller</h1>

<h2>Mode</h2>
<table>
<tr><th>Mode</th><td class="mode-{{lower .Mode}}">{{.Mode}}</td></tr>
<tr><th>Cycle</th><td>{{.Cycle}}</td></tr>
<tr><th>Water level</th><td>{{.Water}}</td></tr>
<tr><th>Steam rate</th><td>{{.Steam}}</td></tr>
<tr><th>Valve</th><td class="{{if .ValveOpen}}on{{else}}off{{end}}">{{if .ValveOpen}}OPEN{{else}}CLOSED{{end}}</td></tr>
{{if .HavePred}}<tr><th>Predicted band</th><td>{{.PredMin}} .. {{.PredMax}}</td></tr>{{end}}
</table>

<h2>Units</h2>
<table>
<tr><th>Water sensor</th><td class="{{if eq .WaterUnit.FailState "NoFail"}}nofail{{else}}faulty{{end}}">{{.WaterUnit.FailState}}{{if ne .WaterUnit.FailureType "NoFailure"}} ({{.WaterUnit.FailureType}}){{end}}</td></tr>
<tr><th>Steam sensor</th><td class="{{if eq .SteamUnit.FailState "NoFail"}}nofail{{else}}faulty{{end}}">{{.SteamUnit.FailState}}{{if ne .SteamUnit.FailureType "NoFailure"}} ({{.SteamUnit.FailureType}}){{end}}</td></tr>
{{range $i := pumpRange .Pumps}}
<tr><th>Pump {{$i}}</th><td class="{{if index $.PumpOn $i}}on{{else}}off{{end}}">{{if index $.PumpOn $i}}ON{{else}}OFF{{end}}, {{(index $.PumpUnits $i).FailState}}</td></tr>
{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Cycle length</th><td>{{.Config.CycleMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/pumps.json">Pumps JSON</a> · <a href="/healthz">Health</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
