package core

import "time"

// Status represents the observed state of a speaker.
type Status struct {
	State      PlaybackState `json:"state"`
	Volume     int           `json:"volume"` // percent, 0-100
	Muted      bool          `json:"muted"`
	Device     *Device       `json:"device,omitempty"`
	NowPlaying *AudioFile    `json:"now_playing,omitempty"`
	ObservedAt time.Time     `json:"observed_at"`
}

// Available returns true if the speaker was reachable.
func (s *Status) Available() bool {
	return s != nil && s.State != StateUnavailable
}

// IsPlaying returns true if an audio file is playing.
func (s *Status) IsPlaying() bool {
	return s != nil && s.State == StatePlaying
}

// Unavailable returns a Status for an unreachable speaker.
func Unavailable(device *Device) *Status {
	return &Status{
		State:      StateUnavailable,
		Device:     device,
		ObservedAt: time.Now(),
	}
}
