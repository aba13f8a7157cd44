package tail

import (
	"context"
	"time"

	"github.com/vcsh30/dahuactl/internal/core"
)

// EventType represents the type of speaker event.
type EventType int

const (
	EventPlaybackStart EventType = iota
	EventPlaybackStop
	EventFileChange
	EventVolumeChange
	EventMuteChange
	EventUnavailable
	EventRecovered
)

// Event represents a speaker state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *core.Status
	Current   *core.Status
}

// Watcher polls a speaker for state changes and emits events.
type Watcher struct {
	controller core.Controller
	interval   time.Duration
	events     chan Event
	done       chan struct{}
}

// NewWatcher creates a new state watcher.
func NewWatcher(controller core.Controller, interval time.Duration) *Watcher {
	if interval == 0 {
		interval = 5 * time.Second
	}
	return &Watcher{
		controller: controller,
		interval:   interval,
		events:     make(chan Event, 16),
		done:       make(chan struct{}),
	}
}

// Events returns the channel of speaker events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins polling for state changes.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.events)

	var prev *core.Status

	// Get initial state
	status, err := w.controller.Status(ctx)
	if err == nil {
		prev = status
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
			curr, err := w.controller.Status(ctx)
			if err != nil {
				continue
			}

			events := diffStatus(prev, curr)
			for _, e := range events {
				select {
				case w.events <- e:
				default:
					// Drop event if channel is full
				}
			}

			prev = curr
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// diffStatus compares two observations and returns detected events.
func diffStatus(prev, curr *core.Status) []Event {
	if curr == nil {
		return nil
	}

	now := time.Now()
	var events []Event

	// First poll - no previous state
	if prev == nil {
		if !curr.Available() {
			events = append(events, Event{
				Type:      EventUnavailable,
				Timestamp: now,
				Current:   curr,
			})
		} else if curr.IsPlaying() {
			events = append(events, Event{
				Type:      EventPlaybackStart,
				Timestamp: now,
				Current:   curr,
			})
		}
		return events
	}

	// Availability transitions mask everything else: a speaker that just
	// dropped off the network reports no volume and no playback.
	if prev.Available() && !curr.Available() {
		return []Event{{
			Type:      EventUnavailable,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		}}
	}
	if !prev.Available() && curr.Available() {
		events = append(events, Event{
			Type:      EventRecovered,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
		if curr.IsPlaying() {
			events = append(events, Event{
				Type:      EventPlaybackStart,
				Timestamp: now,
				Previous:  prev,
				Current:   curr,
			})
		}
		return events
	}
	if !curr.Available() {
		return nil
	}

	// Playback transitions
	if !prev.IsPlaying() && curr.IsPlaying() {
		events = append(events, Event{
			Type:      EventPlaybackStart,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	} else if prev.IsPlaying() && !curr.IsPlaying() {
		events = append(events, Event{
			Type:      EventPlaybackStop,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	} else if fileChanged(prev, curr) {
		events = append(events, Event{
			Type:      EventFileChange,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	// Volume change detection
	if prev.Volume != curr.Volume {
		events = append(events, Event{
			Type:      EventVolumeChange,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	// Mute change detection
	if prev.Muted != curr.Muted {
		events = append(events, Event{
			Type:      EventMuteChange,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	return events
}

// fileChanged returns true if the playing file changed mid-playback.
func fileChanged(prev, curr *core.Status) bool {
	if prev.NowPlaying == nil || curr.NowPlaying == nil {
		return false
	}
	return prev.NowPlaying.ID != curr.NowPlaying.ID
}
