package tail

import (
	"strings"
	"testing"
	"time"

	"github.com/vcsh30/dahuactl/internal/core"
)

func TestFormatterDescriptions(t *testing.T) {
	f := NewFormatter(WithEmoji(false))

	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name: "playback start with file",
			event: Event{
				Type:    EventPlaybackStart,
				Current: playing(50, "chime.mp3"),
			},
			want: "Now playing: chime.mp3",
		},
		{
			name: "playback stop with file",
			event: Event{
				Type:     EventPlaybackStop,
				Previous: playing(50, "chime.mp3"),
				Current:  idle(50),
			},
			want: "Stopped: chime.mp3",
		},
		{
			name: "volume change",
			event: Event{
				Type:    EventVolumeChange,
				Current: idle(80),
			},
			want: "Volume: 80%",
		},
		{
			name: "muted",
			event: Event{
				Type:    EventMuteChange,
				Current: &core.Status{State: core.StateIdle, Muted: true},
			},
			want: "Muted",
		},
		{
			name: "unavailable without device",
			event: Event{
				Type:    EventUnavailable,
				Current: unavailable(),
			},
			want: "Speaker unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Format(tt.event); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatterTimestamp(t *testing.T) {
	f := NewFormatter(WithEmoji(false), WithTimestamp(true))
	ts := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	got := f.Format(Event{Type: EventVolumeChange, Timestamp: ts, Current: idle(20)})
	if !strings.HasPrefix(got, "09:30:00 ") {
		t.Errorf("Format() = %q, want timestamp prefix", got)
	}
}

func TestFormatterTemplate(t *testing.T) {
	f := NewFormatter(WithTemplate("{{.Type}} vol={{.Volume}} file={{.File}}"))

	got := f.Format(Event{Type: EventPlaybackStart, Current: playing(60, "alarm.mp3")})
	want := "playback_start vol=60 file=alarm.mp3"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatterBadTemplateFallsBack(t *testing.T) {
	f := NewFormatter(WithEmoji(false), WithTemplate("{{.Type"))

	got := f.Format(Event{Type: EventVolumeChange, Current: idle(40)})
	if got != "Volume: 40%" {
		t.Errorf("Format() = %q, want plain line fallback", got)
	}
}
