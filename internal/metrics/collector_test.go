package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vcsh30/dahuactl/internal/core"
)

type staticController struct {
	core.Controller

	status *core.Status
	files  []core.AudioFile
	err    error
}

func (c *staticController) Status(_ context.Context) (*core.Status, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.status, nil
}

func (c *staticController) Files(_ context.Context) ([]core.AudioFile, error) {
	return c.files, nil
}

func TestCollectorPlaying(t *testing.T) {
	controller := &staticController{
		status: &core.Status{
			State:  core.StatePlaying,
			Volume: 70,
			Device: &core.Device{Name: "Porch Speaker", Model: "VCS-SH30"},
		},
		files: []core.AudioFile{{ID: 1, Name: "chime.mp3"}, {ID: 2, Name: "alarm.mp3"}},
	}

	registry := prometheus.NewRegistry()
	if err := registry.Register(NewCollector(controller)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	expected := `
		# HELP dahuactl_speaker_up Whether the speaker is reachable (1=up, 0=down)
		# TYPE dahuactl_speaker_up gauge
		dahuactl_speaker_up{model="VCS-SH30",speaker="Porch Speaker"} 1
		# HELP dahuactl_speaker_playing Whether the speaker is playing audio (1=playing, 0=idle)
		# TYPE dahuactl_speaker_playing gauge
		dahuactl_speaker_playing{model="VCS-SH30",speaker="Porch Speaker"} 1
		# HELP dahuactl_speaker_volume_percent Current output volume (0-100)
		# TYPE dahuactl_speaker_volume_percent gauge
		dahuactl_speaker_volume_percent{model="VCS-SH30",speaker="Porch Speaker"} 70
		# HELP dahuactl_speaker_files Number of audio files stored on the speaker
		# TYPE dahuactl_speaker_files gauge
		dahuactl_speaker_files{model="VCS-SH30",speaker="Porch Speaker"} 2
	`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"dahuactl_speaker_up",
		"dahuactl_speaker_playing",
		"dahuactl_speaker_volume_percent",
		"dahuactl_speaker_files",
	); err != nil {
		t.Error(err)
	}
}

func TestCollectorUnavailable(t *testing.T) {
	controller := &staticController{
		status: &core.Status{
			State:  core.StateUnavailable,
			Device: &core.Device{Name: "Porch Speaker", Model: "VCS-SH30"},
		},
	}

	registry := prometheus.NewRegistry()
	if err := registry.Register(NewCollector(controller)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	expected := `
		# HELP dahuactl_speaker_up Whether the speaker is reachable (1=up, 0=down)
		# TYPE dahuactl_speaker_up gauge
		dahuactl_speaker_up{model="VCS-SH30",speaker="Porch Speaker"} 0
		# HELP dahuactl_scrape_success Last scrape success (1=ok, 0=error)
		# TYPE dahuactl_scrape_success gauge
		dahuactl_scrape_success 1
	`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"dahuactl_speaker_up",
		"dahuactl_scrape_success",
	); err != nil {
		t.Error(err)
	}
}

func TestCollectorDropsSeriesOnError(t *testing.T) {
	controller := &staticController{
		status: &core.Status{
			State:  core.StatePlaying,
			Volume: 70,
			Device: &core.Device{Name: "Porch Speaker", Model: "VCS-SH30"},
		},
	}

	registry := prometheus.NewRegistry()
	if err := registry.Register(NewCollector(controller)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// One healthy scrape populates the gauges.
	if _, err := registry.Gather(); err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	controller.err = errors.New("authentication failed")

	expected := `
		# HELP dahuactl_scrape_success Last scrape success (1=ok, 0=error)
		# TYPE dahuactl_scrape_success gauge
		dahuactl_scrape_success 0
	`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"dahuactl_speaker_up",
		"dahuactl_speaker_playing",
		"dahuactl_scrape_success",
	); err != nil {
		t.Error(err)
	}
}
