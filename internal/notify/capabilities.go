package notify

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/medreminder/internal/model"
)

// Capabilities records which optional sinks can run on this machine with
// this configuration. It is resolved once at startup.
type Capabilities struct {
	Sound bool
	Tray  bool
	Email bool
	Voice bool

	// Reasons explains each disabled capability, keyed by sink name.
	Reasons map[string]string

	player   player
	trayOS   string
	trayTool string
}

// Environment is what Resolve probes. Zero fields fall back to the real
// operating system.
type Environment struct {
	GOOS       string
	LookPath   func(file string) (string, error)
	FileExists func(path string) bool
}

func (e Environment) withDefaults() Environment {
	if e.GOOS == "" {
		e.GOOS = runtime.GOOS
	}
	if e.LookPath == nil {
		e.LookPath = exec.LookPath
	}
	if e.FileExists == nil {
		e.FileExists = func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		}
	}
	return e
}

// Resolve decides the capability set from configuration, credential
// presence and binary availability. Secrets must already be filled in.
func Resolve(cfg model.NotifyConfig, env Environment) Capabilities {
	env = env.withDefaults()
	caps := Capabilities{Reasons: map[string]string{}}

	switch {
	case !cfg.Sound.Enabled:
		caps.Reasons["sound"] = "disabled in config"
	case cfg.Sound.Asset == "" || !env.FileExists(cfg.Sound.Asset):
		caps.Reasons["sound"] = "sound file not found: " + cfg.Sound.Asset
	default:
		if p, ok := findPlayer(env.GOOS, cfg.Sound.Player, cfg.Sound.Asset, env.LookPath); ok {
			caps.Sound = true
			caps.player = p
		} else {
			caps.Reasons["sound"] = "no audio player found for " + filepath.Base(cfg.Sound.Asset)
		}
	}

	switch {
	case !cfg.Tray.Enabled:
		caps.Reasons["tray"] = "disabled in config"
	default:
		goos := env.GOOS
		if _, ok := trayTools[goos]; !ok {
			goos = "linux"
		}
		tool := trayTools[goos]
		if _, err := env.LookPath(tool); err == nil {
			caps.Tray = true
			caps.trayOS = goos
			caps.trayTool = tool
		} else {
			caps.Reasons["tray"] = tool + " not found"
		}
	}

	e := cfg.Email
	switch {
	case !e.Enabled:
		caps.Reasons["email"] = "disabled in config"
	case e.From == "" || e.To == "" || e.Password == "":
		caps.Reasons["email"] = "missing sender, recipient or password"
	case e.SMTPHost == "" || e.SMTPPort == "":
		caps.Reasons["email"] = "missing SMTP server"
	default:
		caps.Email = true
	}

	v := cfg.Voice
	switch {
	case !v.Enabled:
		caps.Reasons["voice"] = "disabled in config"
	case v.AccountSID == "" || v.AuthToken == "" || v.From == "" || v.To == "":
		caps.Reasons["voice"] = "missing Twilio account, token or phone numbers"
	default:
		caps.Voice = true
	}

	return caps
}

// Build constructs the dispatcher with the visual sink first, followed by
// every enabled optional sink.
func Build(cfg model.NotifyConfig, caps Capabilities, visual *VisualSink, log *zap.SugaredLogger) *Dispatcher {
	var sinks []Sink
	if visual != nil {
		sinks = append(sinks, visual)
	}
	if caps.Sound {
		sinks = append(sinks, newSoundSink(cfg.Sound.Asset, caps.player))
	}
	if caps.Tray {
		sinks = append(sinks, newTraySink(caps.trayOS, caps.trayTool))
	}
	if caps.Email {
		sinks = append(sinks, NewEmailSink(cfg.Email))
	}
	if caps.Voice {
		sinks = append(sinks, NewVoiceSink(cfg.Voice))
	}

	return NewDispatcher(log, time.Duration(cfg.SinkTimeoutSec)*time.Second, sinks...)
}
