package bridge

import (
	"fmt"
	"strings"
)

// entityConfig is a Home Assistant MQTT discovery payload. Field names use
// the abbreviated keys Home Assistant documents for discovery messages.
type entityConfig struct {
	Name              string       `json:"name"`
	StateTopic        string       `json:"stat_t"`
	CommandTopic      string       `json:"cmd_t,omitempty"`
	AvailabilityTopic string       `json:"avty_t"`
	UniqueID          string       `json:"uniq_id"`
	UnitOfMeasurement string       `json:"unit_of_meas,omitempty"`
	Icon              string       `json:"icon,omitempty"`
	Device            deviceConfig `json:"dev"`

	// For number entities
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

type deviceConfig struct {
	IDs          string `json:"ids"`
	Name         string `json:"name"`
	Manufacturer string `json:"mf,omitempty"`
	Model        string `json:"mdl,omitempty"`
	SWVersion    string `json:"sw,omitempty"`
}

// entity pairs a discovery topic with its config payload.
type entity struct {
	Topic  string
	Config entityConfig
}

// deviceID derives a stable identifier from the speaker's MAC address.
func deviceID(mac string) string {
	id := strings.ToLower(mac)
	id = strings.ReplaceAll(id, ":", "")
	id = strings.ReplaceAll(id, "-", "")
	if id == "" {
		id = "unknown"
	}
	return "dahua_" + id
}

// entities builds the discovery payloads for every entity the bridge
// exposes: a playback switch, a volume number, a mute switch and a state
// sensor.
func (b *Bridge) entities() []entity {
	id := b.id
	dev := deviceConfig{
		IDs:          id,
		Name:         b.deviceName,
		Manufacturer: "Dahua",
		Model:        b.deviceModel,
		SWVersion:    b.deviceVersion,
	}
	avty := b.topic("availability")

	volMin, volMax := 0, 100

	return []entity{
		{
			Topic: fmt.Sprintf("%s/switch/%s/playing/config", b.discoveryPrefix, id),
			Config: entityConfig{
				Name:              "Playing",
				StateTopic:        b.topic("playing"),
				CommandTopic:      b.topic("playing/set"),
				AvailabilityTopic: avty,
				UniqueID:          id + "_playing",
				Icon:              "mdi:play-circle",
				Device:            dev,
			},
		},
		{
			Topic: fmt.Sprintf("%s/number/%s/volume/config", b.discoveryPrefix, id),
			Config: entityConfig{
				Name:              "Volume",
				StateTopic:        b.topic("volume"),
				CommandTopic:      b.topic("volume/set"),
				AvailabilityTopic: avty,
				UniqueID:          id + "_volume",
				UnitOfMeasurement: "%",
				Icon:              "mdi:volume-high",
				Device:            dev,
				Min:               &volMin,
				Max:               &volMax,
			},
		},
		{
			Topic: fmt.Sprintf("%s/switch/%s/mute/config", b.discoveryPrefix, id),
			Config: entityConfig{
				Name:              "Mute",
				StateTopic:        b.topic("mute"),
				CommandTopic:      b.topic("mute/set"),
				AvailabilityTopic: avty,
				UniqueID:          id + "_mute",
				Icon:              "mdi:volume-mute",
				Device:            dev,
			},
		},
		{
			Topic: fmt.Sprintf("%s/sensor/%s/state/config", b.discoveryPrefix, id),
			Config: entityConfig{
				Name:              "State",
				StateTopic:        b.topic("state"),
				AvailabilityTopic: avty,
				UniqueID:          id + "_state",
				Icon:              "mdi:speaker",
				Device:            dev,
			},
		},
		{
			Topic: fmt.Sprintf("%s/sensor/%s/now_playing/config", b.discoveryPrefix, id),
			Config: entityConfig{
				Name:              "Now Playing",
				StateTopic:        b.topic("now_playing"),
				AvailabilityTopic: avty,
				UniqueID:          id + "_now_playing",
				Icon:              "mdi:music-note",
				Device:            dev,
			},
		},
	}
}
