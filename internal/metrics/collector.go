// Package metrics exposes speaker state as Prometheus metrics. The
// collector polls the speaker on scrape, so the exported values are as
// fresh as the scrape interval.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vcsh30/dahuactl/internal/core"
)

// Collector collects speaker health metrics.
type Collector struct {
	controller core.Controller

	up      *prometheus.GaugeVec
	playing *prometheus.GaugeVec
	volume  *prometheus.GaugeVec
	muted   *prometheus.GaugeVec
	files   *prometheus.GaugeVec
	success prometheus.Gauge
}

// NewCollector creates a collector backed by the given speaker controller.
func NewCollector(controller core.Controller) *Collector {
	labels := []string{"speaker", "model"}
	return &Collector{
		controller: controller,
		up: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dahuactl_speaker_up",
			Help: "Whether the speaker is reachable (1=up, 0=down)",
		}, labels),
		playing: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dahuactl_speaker_playing",
			Help: "Whether the speaker is playing audio (1=playing, 0=idle)",
		}, labels),
		volume: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dahuactl_speaker_volume_percent",
			Help: "Current output volume (0-100)",
		}, labels),
		muted: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dahuactl_speaker_muted",
			Help: "Whether the speaker is muted (1=muted, 0=unmuted)",
		}, labels),
		files: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dahuactl_speaker_files",
			Help: "Number of audio files stored on the speaker",
		}, labels),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dahuactl_scrape_success",
			Help: "Last scrape success (1=ok, 0=error)",
		}),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.up.Describe(ch)
	c.playing.Describe(ch)
	c.volume.Describe(ch)
	c.muted.Describe(ch)
	c.files.Describe(ch)
	c.success.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, err := c.controller.Status(ctx)
	if err != nil {
		// Drop series from the previous scrape so a broken controller
		// does not keep exporting the last healthy values.
		c.reset()
		c.success.Set(0)
		c.collectAll(ch)
		return
	}

	labels := prometheus.Labels{"speaker": "", "model": ""}
	if status.Device != nil {
		labels["speaker"] = status.Device.Name
		labels["model"] = status.Device.Model
	}

	c.reset()
	c.up.With(labels).Set(boolToFloat(status.Available()))

	if status.Available() {
		c.playing.With(labels).Set(boolToFloat(status.IsPlaying()))
		c.volume.With(labels).Set(float64(status.Volume))
		c.muted.With(labels).Set(boolToFloat(status.Muted))

		if files, err := c.controller.Files(ctx); err == nil {
			c.files.With(labels).Set(float64(len(files)))
		}
	}

	c.success.Set(1)
	c.collectAll(ch)
}

func (c *Collector) reset() {
	c.up.Reset()
	c.playing.Reset()
	c.volume.Reset()
	c.muted.Reset()
	c.files.Reset()
}

func (c *Collector) collectAll(ch chan<- prometheus.Metric) {
	c.up.Collect(ch)
	c.playing.Collect(ch)
	c.volume.Collect(ch)
	c.muted.Collect(ch)
	c.files.Collect(ch)
	c.success.Collect(ch)
}

func boolToFloat(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
