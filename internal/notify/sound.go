package notify

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nhle/medreminder/internal/model"
)

// player describes how to invoke one audio playback binary.
type player struct {
	bin  string
	args func(asset string) []string

	// formats lists the file extensions the player decodes. Nil means any.
	formats []string
}

func (p player) plays(asset string) bool {
	if p.formats == nil {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(asset), "."))
	return slices.Contains(p.formats, ext)
}

var players = map[string][]player{
	"linux": {
		{"paplay", func(a string) []string { return []string{a} }, []string{"wav", "ogg", "flac"}},
		{"mpg123", func(a string) []string { return []string{"-q", a} }, []string{"mp3"}},
		{"ffplay", func(a string) []string { return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", a} }, nil},
		{"aplay", func(a string) []string { return []string{"-q", a} }, []string{"wav"}},
	},
	"darwin": {
		{"afplay", func(a string) []string { return []string{a} }, nil},
	},
	"windows": {
		{"powershell", func(a string) []string {
			return []string{"-NoProfile", "-Command",
				"(New-Object Media.SoundPlayer '" + strings.ReplaceAll(a, "'", "''") + "').PlaySync()"}
		}, []string{"wav"}},
	},
}

// findPlayer returns the first usable player for goos that can decode
// asset. A forced player name from config is tried on its own and is
// trusted with any format.
func findPlayer(goos, forced, asset string, lookPath func(string) (string, error)) (player, bool) {
	candidates := players[goos]
	if goos != "linux" && goos != "darwin" && goos != "windows" {
		candidates = players["linux"]
	}

	if forced != "" {
		for _, p := range candidates {
			if p.bin == forced || filepath.Base(forced) == p.bin {
				if _, err := lookPath(forced); err == nil {
					return player{bin: forced, args: p.args}, true
				}
				return player{}, false
			}
		}
		if _, err := lookPath(forced); err == nil {
			return player{bin: forced, args: func(a string) []string { return []string{a} }}, true
		}
		return player{}, false
	}

	for _, p := range candidates {
		if !p.plays(asset) {
			continue
		}
		if _, err := lookPath(p.bin); err == nil {
			return p, true
		}
	}
	return player{}, false
}

// SoundSink plays the alarm asset through a local player binary.
type SoundSink struct {
	asset  string
	player player
	run    runFunc
}

func newSoundSink(asset string, p player) *SoundSink {
	return &SoundSink{asset: asset, player: p, run: runCommand}
}

func (s *SoundSink) Name() string { return "sound" }

func (s *SoundSink) Notify(ctx context.Context, _ model.Reminder) error {
	return s.run(ctx, s.player.bin, s.player.args(s.asset)...)
}
