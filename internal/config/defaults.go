package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Speaker: SpeakerConfig{
			Username: "admin",
			Name:     "Dahua Speaker",
			Timeout:  5,
		},
		Poll: PollConfig{
			Interval: 5000,
		},
		MQTT: MQTTConfig{
			Port:            1883,
			TopicPrefix:     "dahuactl",
			DiscoveryPrefix: "homeassistant",
		},
		Serve: ServeConfig{
			Addr: ":8099",
		},
		TUI: TUIConfig{
			RefreshInterval: 2000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Speaker
	if c.Speaker.Username == "" {
		c.Speaker.Username = d.Speaker.Username
	}
	if c.Speaker.Name == "" {
		c.Speaker.Name = d.Speaker.Name
	}
	if c.Speaker.Timeout == 0 {
		c.Speaker.Timeout = d.Speaker.Timeout
	}

	// Poll
	if c.Poll.Interval == 0 {
		c.Poll.Interval = d.Poll.Interval
	}

	// MQTT
	if c.MQTT.Port == 0 {
		c.MQTT.Port = d.MQTT.Port
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = d.MQTT.TopicPrefix
	}
	if c.MQTT.DiscoveryPrefix == "" {
		c.MQTT.DiscoveryPrefix = d.MQTT.DiscoveryPrefix
	}

	// Serve
	if c.Serve.Addr == "" {
		c.Serve.Addr = d.Serve.Addr
	}

	// TUI
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
