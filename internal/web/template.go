package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/vibration-sensor/internal/status"
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
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Vibration Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.error { color: red; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Vibration Sensor <span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>State</h2>
<table>
<tr><th>Loop</th><td id="loop-state">{{.State}}</td></tr>
<tr><th>Last gesture</th><td id="last-gesture">{{if .LastGestureAt.IsZero}}none{{else}}{{.LastGesture}}{{end}}</td></tr>
<tr><th>Last sample</th><td id="last-sample">{{if .HasSample}}x={{.LastSample.X}} y={{.LastSample.Y}} z={{.LastSample.Z}}{{else}}none{{end}}</td></tr>
<tr><th>Last error</th><td id="last-error" class="{{if .LastError}}error{{end}}">{{if .LastError}}{{.LastError}}{{else}}none{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Interrupts</h2>
<table>
<tr><th>RTC tick</th><td id="n-rtc">{{.Counts.RTCTick}}</td></tr>
<tr><th>Button</th><td id="n-button">{{.Counts.Button}}</td></tr>
<tr><th>Reed switch</th><td id="n-reed">{{.Counts.ReedSwitch}}</td></tr>
<tr><th>Motion</th><td id="n-motion">{{.Counts.Motion}}</td></tr>
<tr><th>Wakes</th><td id="n-wakes">{{.Counts.Wakes}}</td></tr>
<tr><th>Dropped edges</th><td>{{.DroppedEdges}}</td></tr>
</table>

<h2>Samples</h2>
<table>
<tr><th>Armed</th><td id="n-armed">{{.Counts.Armed}}</td></tr>
<tr><th>Overwritten</th><td id="n-overwritten">{{.Counts.Overwritten}}</td></tr>
<tr><th>Sent</th><td id="n-sent">{{.Counts.Sent}}</td></tr>
<tr><th>Sensor errors</th><td>{{.Counts.SensorErrors}}</td></tr>
<tr><th>Transport errors</th><td>{{.Counts.TransportErrors}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Version</th><td>{{.Config.Version}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Quiet period</th><td>{{.Config.QuietPeriodMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Gate</th><td>{{.Config.GatePolicy}} ({{.Config.GateCapacity}})</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }
  function set(id, v) {
    var el = document.getElementById(id);
    if (el) { el.textContent = v; }
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(ev) {
      try {
        var s = JSON.parse(ev.data).status;
        set("loop-state", s.state);
        set("last-gesture", s.last_gesture || "none");
        set("last-error", (s.errors && s.errors.last) || "none");
        var c = s.interrupt_counts;
        set("n-rtc", c.rtc_tick);
        set("n-button", c.button);
        set("n-reed", c.reed_switch);
        set("n-motion", c.motion);
        set("n-wakes", c.wakes);
        set("n-armed", s.samples.armed);
        set("n-overwritten", s.samples.overwritten);
        set("n-sent", s.samples.sent);
        if (s.samples.last) {
          var l = s.samples.last;
          set("last-sample", "x=" + l.x + " y=" + l.y + " z=" + l.z);
        }
      } catch (e) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
