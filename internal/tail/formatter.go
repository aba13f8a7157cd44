package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	// Timestamp
	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}

	// Emoji
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}

	// Event description
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
	}

	if e.Current != nil {
		data.State = string(e.Current.State)
		data.Volume = e.Current.Volume
		data.Muted = e.Current.Muted
		if e.Current.NowPlaying != nil {
			data.File = e.Current.NowPlaying.Name
		}
		if e.Current.Device != nil {
			data.Speaker = e.Current.Device.Name
		}
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	State     string
	File      string
	Speaker   string
	Volume    int
	Muted     bool
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	switch e.Type {
	case EventPlaybackStart:
		if e.Current != nil && e.Current.NowPlaying != nil {
			return fmt.Sprintf("Now playing: %s", e.Current.NowPlaying.Name)
		}
		return "Playback started"

	case EventPlaybackStop:
		if e.Previous != nil && e.Previous.NowPlaying != nil {
			return fmt.Sprintf("Stopped: %s", e.Previous.NowPlaying.Name)
		}
		return "Playback stopped"

	case EventFileChange:
		if e.Current != nil && e.Current.NowPlaying != nil {
			return fmt.Sprintf("Now playing: %s", e.Current.NowPlaying.Name)
		}
		return "File changed"

	case EventVolumeChange:
		if e.Current != nil {
			return fmt.Sprintf("Volume: %d%%", e.Current.Volume)
		}
		return "Volume changed"

	case EventMuteChange:
		if e.Current != nil && e.Current.Muted {
			return "Muted"
		}
		return "Unmuted"

	case EventUnavailable:
		if e.Current != nil && e.Current.Device != nil {
			return fmt.Sprintf("Speaker unavailable: %s", e.Current.Device.Name)
		}
		return "Speaker unavailable"

	case EventRecovered:
		if e.Current != nil && e.Current.Device != nil {
			return fmt.Sprintf("Speaker back online: %s", e.Current.Device.Name)
		}
		return "Speaker back online"

	default:
		return "Unknown event"
	}
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventPlaybackStart:
		return "▶️"
	case EventPlaybackStop:
		return "⏹️"
	case EventFileChange:
		return "🎵"
	case EventVolumeChange:
		return "🔊"
	case EventMuteChange:
		return "🔇"
	case EventUnavailable:
		return "📴"
	case EventRecovered:
		return "📶"
	default:
		return "❓"
	}
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventPlaybackStart:
		return "playback_start"
	case EventPlaybackStop:
		return "playback_stop"
	case EventFileChange:
		return "file_change"
	case EventVolumeChange:
		return "volume_change"
	case EventMuteChange:
		return "mute_change"
	case EventUnavailable:
		return "unavailable"
	case EventRecovered:
		return "recovered"
	default:
		return "unknown"
	}
}
