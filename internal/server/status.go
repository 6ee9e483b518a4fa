package server

import (
	"html/template"
	"io"

	"github.com/and161185/fill-monitor/internal/config"
	"github.com/and161185/fill-monitor/model"
	"github.com/and161185/fill-monitor/storage/filelog"
)

const barScale = 3 // px per percent

var statusPage = template.Must(template.New("status").Parse(`<html>
<head>
    <meta http-equiv="refresh" content="{{.Refresh}}">
    <title>Dustbin Monitor</title>
    <style>
        .bar-container { width: 120px; height: 300px; border: 2px solid #333; background:#eee; position: relative; }
        .fill-bar { width: 100%; position: absolute; bottom: 0; background: green; }
    </style>
</head>
<body>
    <h2>Dustbin Monitor</h2>
{{if .HasData}}
    <p><b>Timestamp:</b> {{.Timestamp}}</p>
    <p><b>Distance:</b> {{.Distance}} cm</p>
    <p><b>Fill:</b> {{.Fill}}%</p>
    <div class="bar-container">
        <div class="fill-bar" style="height: {{.BarHeight}}px;"></div>
    </div>
{{else}}
    <p>No data received yet.</p>
{{end}}
    <p><small>Log file: {{.LogPath}}</small></p>
</body>
</html>
`))

type statusView struct {
	HasData   bool
	Timestamp string
	Distance  string
	Fill      int
	BarHeight int
	Refresh   int
	LogPath   string
}

func newStatusView(r model.Reading, ok bool, cfg *config.CollectorConfig) statusView {
	v := statusView{
		HasData: ok,
		Refresh: cfg.RefreshSeconds,
		LogPath: cfg.LogPath,
	}
	if ok {
		v.Timestamp = r.Timestamp.Format(filelog.TimeLayout)
		v.Distance = model.FormatDistance(r.Distance)
		v.Fill = model.Clamp(r.Fill, 0, 100)
		v.BarHeight = v.Fill * barScale
	}
	return v
}

func renderStatus(w io.Writer, v statusView) error {
	return statusPage.Execute(w, v)
}
