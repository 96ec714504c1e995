package notify

import (
	"context"
	"strings"

	"github.com/nhle/medreminder/internal/model"
)

// trayTools lists the desktop notification binary per OS.
var trayTools = map[string]string{
	"linux":   "notify-send",
	"darwin":  "osascript",
	"windows": "powershell",
}

// TraySink shows a one-shot desktop notification balloon.
type TraySink struct {
	goos string
	bin  string
	run  runFunc
}

func newTraySink(goos, bin string) *TraySink {
	return &TraySink{goos: goos, bin: bin, run: runCommand}
}

func (t *TraySink) Name() string { return "tray" }

func (t *TraySink) Notify(ctx context.Context, r model.Reminder) error {
	return t.run(ctx, t.bin, trayArgs(t.goos, Subject, Body(r))...)
}

func trayArgs(goos, title, msg string) []string {
	switch goos {
	case "darwin":
		return []string{"-e", "display notification " + appleScriptQuote(msg) +
			" with title " + appleScriptQuote(title)}
	case "windows":
		script := `Add-Type -AssemblyName System.Windows.Forms;` +
			`$n = New-Object System.Windows.Forms.NotifyIcon;` +
			`$n.Icon = [System.Drawing.SystemIcons]::Information;` +
			`$n.Visible = $true;` +
			`$n.ShowBalloonTip(10000, ` + psQuote(title) + `, ` + psQuote(msg) + `, 'Info');` +
			`Start-Sleep -Seconds 10; $n.Dispose()`
		return []string{"-NoProfile", "-Command", script}
	default:
		return []string{"--app-name=medreminder", "--urgency=critical", title, msg}
	}
}

func appleScriptQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
