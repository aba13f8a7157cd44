package config

// Config is the root configuration structure.
type Config struct {
	Speaker SpeakerConfig `toml:"speaker"`
	Poll    PollConfig    `toml:"poll"`
	MQTT    MQTTConfig    `toml:"mqtt"`
	Serve   ServeConfig   `toml:"serve"`
	TUI     TUIConfig     `toml:"tui"`
	Log     LogConfig     `toml:"log"`
}

// SpeakerConfig holds the device connection settings.
type SpeakerConfig struct {
	Host     string `toml:"host"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	Timeout  int    `toml:"timeout"` // seconds
}

// PollConfig holds state polling settings.
type PollConfig struct {
	Interval int `toml:"interval"` // milliseconds
}

// MQTTConfig holds broker settings for the Home Assistant bridge.
type MQTTConfig struct {
	Enabled         bool   `toml:"enabled"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	TLS             bool   `toml:"tls"`
	Username        string `toml:"username"`
	Password        string `toml:"password"`
	TopicPrefix     string `toml:"topic_prefix"`
	DiscoveryPrefix string `toml:"discovery_prefix"`
}

// ServeConfig holds daemon settings.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	RefreshInterval int `toml:"refresh_interval"` // milliseconds
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}
