package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/sensor-node/internal/logic"
	"github.com/sweeney/sensor-node/internal/status"
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
	"centi": func(v int32) string {
		sign := ""
		if v < 0 {
			sign, v = "-", -v
		}
		return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
	},
	"reading": func(m logic.Measurement) string {
		if !m.Present {
			return "not detected"
		}
		return fmt.Sprintf("%d (reported %d)", m.Current, m.LastReported)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Sensor Node {{.Config.NodeID}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Sensor Node {{.Config.NodeID}}<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Inputs</h2>
<table>
<tr><th>Contact</th><td id="contact" class="{{if .Node.Contact.Closed}}on{{else}}off{{end}}">{{if .Node.Contact.Closed}}closed{{else}}open{{end}}</td></tr>
<tr><th>Occupancy</th><td id="occupancy" class="{{if .Node.Motion.Occupied}}on{{else}}off{{end}}">{{if .Node.Motion.Occupied}}occupied{{else}}unoccupied{{end}}</td></tr>
<tr><th>Motion phase</th><td id="motion-phase">{{.Node.Motion.Phase}}</td></tr>
</table>

<h2>Sensors</h2>
<table>
<tr><th>Illuminance (ADC)</th><td id="illuminance">{{reading .Node.Illuminance}}</td></tr>
<tr><th>Illuminance (lux)</th><td id="illuminance_bus">{{reading .Node.BusIlluminance}}</td></tr>
<tr><th>Temperature</th><td id="temperature">{{if .Node.Temperature.Present}}{{centi .Node.Temperature.Current}} °C{{else}}not detected{{end}}</td></tr>
<tr><th>Pressure</th><td id="pressure">{{if .Node.Pressure.Present}}{{.Node.Pressure.Current}} hPa{{else}}not detected{{end}}</td></tr>
<tr><th>Humidity</th><td id="humidity">{{if .Node.Humidity.Present}}{{centi .Node.Humidity.Current}} %{{else}}not detected{{end}}</td></tr>
<tr><th>Battery</th><td id="battery">{{.Node.BatteryMV}} mV</td></tr>
<tr><th>Sampling</th><td id="sampling">{{.Node.Mode}} / {{.Node.Cursor}}</td></tr>
<tr><th>Reports</th><td id="reports">{{.Node.Reports}}</td></tr>
</table>

<h2>Settings</h2>
<table>
<tr><th>Occupancy timeout</th><td>{{.Node.Settings.OccupiedDelay}}s</td></tr>
<tr><th>Pressure scale</th><td>{{.Node.Settings.PressureScale}}</td></tr>
<tr><th>Bus light mode</th><td>{{printf "%#02x" .Node.Settings.BusLightMode}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Report interval</th><td>{{.Config.ReportMs}}ms</td></tr>
<tr><th>Measure interval</th><td>{{.Config.MeasureMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/metrics">metrics</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function setText(id, text, cls) {
    var el = document.getElementById(id);
    el.textContent = text;
    if (cls !== undefined) el.className = cls;
  }

  function reading(m) {
    return m ? m.value + " (reported " + m.last_reported + ")" : "not detected";
  }

  function centi(m, unit) {
    return m ? (m.value / 100).toFixed(2) + " " + unit : "not detected";
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss:" : "ws:";
    var ws = new WebSocket(proto + "//" + location.host + "/ws");

    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(ev) {
      try {
        var s = JSON.parse(ev.data).status;
        setText("contact", s.contact.closed ? "closed" : "open", s.contact.closed ? "on" : "off");
        setText("occupancy", s.occupancy.occupied ? "occupied" : "unoccupied", s.occupancy.occupied ? "on" : "off");
        setText("motion-phase", s.occupancy.phase);
        setText("illuminance", reading(s.sensors.illuminance));
        setText("illuminance_bus", reading(s.sensors.illuminance_bus));
        setText("temperature", centi(s.sensors.temperature, "°C"));
        setText("pressure", s.sensors.pressure ? s.sensors.pressure.value + " hPa" : "not detected");
        setText("humidity", centi(s.sensors.humidity, "%"));
        setText("battery", s.battery_mv + " mV");
        setText("sampling", s.sampling.mode + " / " + s.sampling.phase);
        setText("reports", s.reports);
      } catch (e) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
