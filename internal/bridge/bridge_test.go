package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/vcsh30/dahuactl/internal/config"
	"github.com/vcsh30/dahuactl/internal/core"
)

type fakeBroker struct {
	mu        sync.Mutex
	published map[string]string
	retained  map[string]bool
	subs      map[string]func([]byte)
	closed    bool
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{
		published: make(map[string]string),
		retained:  make(map[string]bool),
		subs:      make(map[string]func([]byte)),
	}
}

func (f *fakeBroker) Publish(topic string, payload []byte, retain bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[topic] = string(payload)
	f.retained[topic] = retain
	return nil
}

func (f *fakeBroker) Subscribe(topic string, cb func([]byte)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[topic] = cb
	return nil
}

func (f *fakeBroker) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeBroker) deliver(topic string, payload string) bool {
	f.mu.Lock()
	cb := f.subs[topic]
	f.mu.Unlock()
	if cb == nil {
		return false
	}
	cb([]byte(payload))
	return true
}

func (f *fakeBroker) payload(topic string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.published[topic]
}

type fakeController struct {
	mu     sync.Mutex
	status core.Status
	files  []core.AudioFile

	played  []string
	stopped int
	muted   int
	unmuted int
	volumes []int
}

func (c *fakeController) Status(_ context.Context) (*core.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.status
	return &s, nil
}

func (c *fakeController) Play(_ context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.played = append(c.played, name)
	return nil
}

func (c *fakeController) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped++
	return nil
}

func (c *fakeController) SetVolume(_ context.Context, percent int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volumes = append(c.volumes, percent)
	c.status.Volume = percent
	return nil
}

func (c *fakeController) Mute(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted++
	c.status.Muted = true
	return nil
}

func (c *fakeController) Unmute(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unmuted++
	c.status.Muted = false
	return nil
}

func (c *fakeController) Files(_ context.Context) ([]core.AudioFile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.files, nil
}

func (c *fakeController) Push(_ context.Context, _, _ string) (*core.AudioFile, error) {
	return nil, nil
}

func testBridge(controller core.Controller) (*Bridge, *fakeBroker) {
	b := &Bridge{
		controller:      controller,
		prefix:          "dahuactl",
		discoveryPrefix: "homeassistant",
	}
	b.setDevice(&core.Device{
		MAC:     "AA:BB:CC:DD:EE:FF",
		Model:   "VCS-SH30",
		Version: "1.0",
		Name:    "Porch Speaker",
	})
	broker := newFakeBroker()
	b.broker = broker
	return b, broker
}

func TestDeviceID(t *testing.T) {
	tests := []struct {
		mac  string
		want string
	}{
		{"AA:BB:CC:DD:EE:FF", "dahua_aabbccddeeff"},
		{"aa-bb-cc-dd-ee-ff", "dahua_aabbccddeeff"},
		{"", "dahua_unknown"},
	}
	for _, tt := range tests {
		if got := deviceID(tt.mac); got != tt.want {
			t.Errorf("deviceID(%q) = %q, want %q", tt.mac, got, tt.want)
		}
	}
}

func TestNewRejectsUnknownIdentity(t *testing.T) {
	// Without a MAC the topic tree would be rooted at a placeholder id
	// and never recover, so New must refuse before dialing the broker.
	for _, device := range []*core.Device{nil, {Name: "Porch"}} {
		if _, err := New(config.MQTTConfig{}, &fakeController{}, device); err == nil {
			t.Errorf("New(device=%+v) expected error, got nil", device)
		}
	}
}

func TestDiscoveryPayloads(t *testing.T) {
	b, broker := testBridge(&fakeController{})

	if err := b.publishDiscovery(); err != nil {
		t.Fatalf("publishDiscovery() error = %v", err)
	}

	topic := "homeassistant/number/dahua_aabbccddeeff/volume/config"
	raw := broker.payload(topic)
	if raw == "" {
		t.Fatalf("no discovery payload on %s", topic)
	}

	var cfg entityConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatalf("unmarshal discovery payload: %v", err)
	}
	if cfg.StateTopic != "dahuactl/dahua_aabbccddeeff/volume" {
		t.Errorf("stat_t = %q", cfg.StateTopic)
	}
	if cfg.CommandTopic != "dahuactl/dahua_aabbccddeeff/volume/set" {
		t.Errorf("cmd_t = %q", cfg.CommandTopic)
	}
	if cfg.Min == nil || *cfg.Min != 0 || cfg.Max == nil || *cfg.Max != 100 {
		t.Errorf("volume range = %v..%v, want 0..100", cfg.Min, cfg.Max)
	}
	if cfg.Device.Model != "VCS-SH30" {
		t.Errorf("dev.mdl = %q", cfg.Device.Model)
	}

	// All five entities announced.
	for _, suffix := range []string{
		"switch/dahua_aabbccddeeff/playing/config",
		"switch/dahua_aabbccddeeff/mute/config",
		"sensor/dahua_aabbccddeeff/state/config",
		"sensor/dahua_aabbccddeeff/now_playing/config",
	} {
		if broker.payload("homeassistant/"+suffix) == "" {
			t.Errorf("missing discovery payload for %s", suffix)
		}
	}
}

func TestPublishStatus(t *testing.T) {
	b, broker := testBridge(&fakeController{})

	b.publishStatus(&core.Status{
		State:      core.StatePlaying,
		Volume:     60,
		NowPlaying: &core.AudioFile{ID: 1, Name: "chime.mp3", Playing: true},
	})

	base := "dahuactl/dahua_aabbccddeeff"
	if got := broker.payload(base + "/state"); got != "playing" {
		t.Errorf("state = %q", got)
	}
	if got := broker.payload(base + "/volume"); got != "60" {
		t.Errorf("volume = %q", got)
	}
	if got := broker.payload(base + "/playing"); got != "ON" {
		t.Errorf("playing = %q", got)
	}
	if got := broker.payload(base + "/mute"); got != "OFF" {
		t.Errorf("mute = %q", got)
	}
	if got := broker.payload(base + "/now_playing"); got != "chime.mp3" {
		t.Errorf("now_playing = %q", got)
	}
	if got := broker.payload(base + "/availability"); got != "online" {
		t.Errorf("availability = %q", got)
	}
}

func TestPublishStatusUnavailable(t *testing.T) {
	b, broker := testBridge(&fakeController{})

	b.publishStatus(&core.Status{State: core.StateUnavailable})

	if got := broker.payload("dahuactl/dahua_aabbccddeeff/availability"); got != "offline" {
		t.Errorf("availability = %q", got)
	}
	if got := broker.payload("dahuactl/dahua_aabbccddeeff/state"); got != "" {
		t.Errorf("state published while unavailable: %q", got)
	}
}

func TestCommandVolume(t *testing.T) {
	controller := &fakeController{status: core.Status{State: core.StateIdle, Volume: 50}}
	b, broker := testBridge(controller)

	if err := b.subscribeCommands(context.Background()); err != nil {
		t.Fatalf("subscribeCommands() error = %v", err)
	}

	if !broker.deliver("dahuactl/dahua_aabbccddeeff/volume/set", "80") {
		t.Fatal("no subscription on volume/set")
	}
	if len(controller.volumes) != 1 || controller.volumes[0] != 80 {
		t.Errorf("volumes = %v, want [80]", controller.volumes)
	}
	// State republished after the command.
	if got := broker.payload("dahuactl/dahua_aabbccddeeff/volume"); got != "80" {
		t.Errorf("volume state = %q, want 80", got)
	}
}

func TestCommandPlayingSwitch(t *testing.T) {
	controller := &fakeController{
		status: core.Status{State: core.StateIdle, Volume: 50},
		files:  []core.AudioFile{{ID: 1, Name: "chime.mp3"}},
	}
	b, broker := testBridge(controller)

	if err := b.subscribeCommands(context.Background()); err != nil {
		t.Fatalf("subscribeCommands() error = %v", err)
	}

	broker.deliver("dahuactl/dahua_aabbccddeeff/playing/set", "ON")
	if len(controller.played) != 1 || controller.played[0] != "chime.mp3" {
		t.Errorf("played = %v, want first stored file", controller.played)
	}

	broker.deliver("dahuactl/dahua_aabbccddeeff/playing/set", "OFF")
	if controller.stopped != 1 {
		t.Errorf("stopped = %d, want 1", controller.stopped)
	}
}

func TestCommandPlayingDefaultFile(t *testing.T) {
	controller := &fakeController{
		status: core.Status{State: core.StateIdle},
		files:  []core.AudioFile{{ID: 1, Name: "chime.mp3"}, {ID: 2, Name: "alarm.mp3"}},
	}
	b, broker := testBridge(controller)
	b.SetDefaultFile("alarm.mp3")

	if err := b.subscribeCommands(context.Background()); err != nil {
		t.Fatalf("subscribeCommands() error = %v", err)
	}

	broker.deliver("dahuactl/dahua_aabbccddeeff/playing/set", "ON")
	if len(controller.played) != 1 || controller.played[0] != "alarm.mp3" {
		t.Errorf("played = %v, want configured default", controller.played)
	}
}

func TestCommandMute(t *testing.T) {
	controller := &fakeController{status: core.Status{State: core.StateIdle, Volume: 50}}
	b, broker := testBridge(controller)

	if err := b.subscribeCommands(context.Background()); err != nil {
		t.Fatalf("subscribeCommands() error = %v", err)
	}

	broker.deliver("dahuactl/dahua_aabbccddeeff/mute/set", "ON")
	if controller.muted != 1 {
		t.Errorf("muted = %d, want 1", controller.muted)
	}
	if got := broker.payload("dahuactl/dahua_aabbccddeeff/mute"); got != "ON" {
		t.Errorf("mute state = %q, want ON", got)
	}

	broker.deliver("dahuactl/dahua_aabbccddeeff/mute/set", "OFF")
	if controller.unmuted != 1 {
		t.Errorf("unmuted = %d, want 1", controller.unmuted)
	}
}

func TestCommandPlayFile(t *testing.T) {
	controller := &fakeController{status: core.Status{State: core.StateIdle}}
	b, broker := testBridge(controller)

	if err := b.subscribeCommands(context.Background()); err != nil {
		t.Fatalf("subscribeCommands() error = %v", err)
	}

	broker.deliver("dahuactl/dahua_aabbccddeeff/play/set", "siren.mp3")
	if len(controller.played) != 1 || controller.played[0] != "siren.mp3" {
		t.Errorf("played = %v, want [siren.mp3]", controller.played)
	}
}
