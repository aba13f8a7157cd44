// Package bridge exposes a speaker over MQTT using Home Assistant's
// discovery convention, so the speaker shows up as a device with playback,
// volume and mute entities.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/vcsh30/dahuactl/internal/config"
	"github.com/vcsh30/dahuactl/internal/core"
	"github.com/vcsh30/dahuactl/internal/tail"
)

const (
	payloadOnline  = "online"
	payloadOffline = "offline"
	payloadOn      = "ON"
	payloadOff     = "OFF"
)

// Bridge publishes speaker state to MQTT and applies commands received
// from MQTT to the speaker.
type Bridge struct {
	controller core.Controller
	broker     broker

	id              string
	prefix          string
	discoveryPrefix string
	deviceName      string
	deviceModel     string
	deviceVersion   string

	defaultFile string // file played when the playing switch turns on
}

// New connects to the MQTT broker and prepares a bridge for the given
// speaker. The device identity seeds discovery payloads and topic names,
// so it must be known before the bridge can come up: topics published
// under a placeholder id would stick in the broker as retained garbage.
func New(cfg config.MQTTConfig, controller core.Controller, device *core.Device) (*Bridge, error) {
	if device == nil || device.MAC == "" {
		return nil, fmt.Errorf("speaker identity unknown, cannot derive mqtt topics")
	}

	b := &Bridge{
		controller:      controller,
		prefix:          cfg.TopicPrefix,
		discoveryPrefix: cfg.DiscoveryPrefix,
	}
	b.setDevice(device)

	mc, err := newMQTTClient(cfg, b.topic("availability"), payloadOffline)
	if err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	b.broker = mc
	return b, nil
}

func (b *Bridge) setDevice(device *core.Device) {
	if device == nil {
		b.id = deviceID("")
		b.deviceName = "Dahua Speaker"
		return
	}
	b.id = deviceID(device.MAC)
	b.deviceName = device.Name
	b.deviceModel = device.Model
	b.deviceVersion = device.Version
}

// SetDefaultFile sets the file played when the playing switch is turned on
// without naming a file.
func (b *Bridge) SetDefaultFile(name string) {
	b.defaultFile = name
}

func (b *Bridge) topic(suffix string) string {
	return fmt.Sprintf("%s/%s/%s", b.prefix, b.id, suffix)
}

// Start announces the device, subscribes to command topics and then
// publishes state for every watcher event until ctx is cancelled or the
// events channel closes.
func (b *Bridge) Start(ctx context.Context, events <-chan tail.Event) error {
	if err := b.publishDiscovery(); err != nil {
		return err
	}
	if err := b.subscribeCommands(ctx); err != nil {
		return err
	}
	if err := b.broker.Publish(b.topic("availability"), []byte(payloadOnline), true); err != nil {
		return err
	}

	// Publish the current state up front so entities are not unknown
	// until the first change.
	if status, err := b.controller.Status(ctx); err == nil {
		b.publishStatus(status)
	}

	for {
		select {
		case <-ctx.Done():
			b.shutdown()
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				b.shutdown()
				return nil
			}
			if e.Current != nil {
				b.publishStatus(e.Current)
			}
		}
	}
}

func (b *Bridge) shutdown() {
	_ = b.broker.Publish(b.topic("availability"), []byte(payloadOffline), true)
	b.broker.Close()
}

func (b *Bridge) publishDiscovery() error {
	for _, e := range b.entities() {
		payload, err := json.Marshal(e.Config)
		if err != nil {
			return err
		}
		if err := b.broker.Publish(e.Topic, payload, true); err != nil {
			return fmt.Errorf("publish discovery for %s: %w", e.Topic, err)
		}
	}
	return nil
}

// publishStatus mirrors a status observation onto the state topics.
func (b *Bridge) publishStatus(status *core.Status) {
	if !status.Available() {
		b.publish("availability", payloadOffline, true)
		return
	}
	b.publish("availability", payloadOnline, true)

	b.publish("state", string(status.State), true)
	b.publish("volume", strconv.Itoa(status.Volume), true)
	b.publish("mute", onOff(status.Muted), true)
	b.publish("playing", onOff(status.IsPlaying()), true)

	nowPlaying := ""
	if status.NowPlaying != nil {
		nowPlaying = status.NowPlaying.Name
	}
	b.publish("now_playing", nowPlaying, true)
}

func (b *Bridge) publish(suffix, payload string, retain bool) {
	if err := b.broker.Publish(b.topic(suffix), []byte(payload), retain); err != nil {
		log.Printf("mqtt: publish %s: %v", b.topic(suffix), err)
	}
}

func (b *Bridge) subscribeCommands(ctx context.Context) error {
	subs := map[string]func([]byte){
		b.topic("playing/set"): func(payload []byte) { b.handlePlaying(ctx, payload) },
		b.topic("volume/set"):  func(payload []byte) { b.handleVolume(ctx, payload) },
		b.topic("mute/set"):    func(payload []byte) { b.handleMute(ctx, payload) },
		b.topic("play/set"):    func(payload []byte) { b.handlePlayFile(ctx, payload) },
	}
	for topic, cb := range subs {
		if err := b.broker.Subscribe(topic, cb); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	return nil
}

func (b *Bridge) handlePlaying(ctx context.Context, payload []byte) {
	switch strings.ToUpper(strings.TrimSpace(string(payload))) {
	case payloadOn:
		name := b.defaultFile
		if name == "" {
			// Without a configured default, play the first stored file.
			files, err := b.controller.Files(ctx)
			if err != nil || len(files) == 0 {
				log.Printf("mqtt: playing ON ignored, no files: %v", err)
				return
			}
			name = files[0].Name
		}
		if err := b.controller.Play(ctx, name); err != nil {
			log.Printf("mqtt: play %q: %v", name, err)
		}
	case payloadOff:
		if err := b.controller.Stop(ctx); err != nil {
			log.Printf("mqtt: stop: %v", err)
		}
	default:
		log.Printf("mqtt: unknown playing payload %q", payload)
	}
	b.refresh(ctx)
}

func (b *Bridge) handleVolume(ctx context.Context, payload []byte) {
	percent, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil {
		log.Printf("mqtt: bad volume payload %q", payload)
		return
	}
	if err := b.controller.SetVolume(ctx, percent); err != nil {
		log.Printf("mqtt: set volume %d: %v", percent, err)
		return
	}
	b.refresh(ctx)
}

func (b *Bridge) handleMute(ctx context.Context, payload []byte) {
	var err error
	switch strings.ToUpper(strings.TrimSpace(string(payload))) {
	case payloadOn:
		err = b.controller.Mute(ctx)
	case payloadOff:
		err = b.controller.Unmute(ctx)
	default:
		log.Printf("mqtt: unknown mute payload %q", payload)
		return
	}
	if err != nil {
		log.Printf("mqtt: mute: %v", err)
		return
	}
	b.refresh(ctx)
}

func (b *Bridge) handlePlayFile(ctx context.Context, payload []byte) {
	name := strings.TrimSpace(string(payload))
	if name == "" {
		return
	}
	if err := b.controller.Play(ctx, name); err != nil {
		log.Printf("mqtt: play %q: %v", name, err)
		return
	}
	b.refresh(ctx)
}

// refresh publishes the state right after a command instead of waiting
// for the next poll.
func (b *Bridge) refresh(ctx context.Context) {
	status, err := b.controller.Status(ctx)
	if err != nil {
		return
	}
	b.publishStatus(status)
}

func onOff(v bool) string {
	if v {
		return payloadOn
	}
	return payloadOff
}
