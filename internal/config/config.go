package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Name     string         `yaml:"name"`
	Serial   SerialConfig   `yaml:"serial"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Security SecurityConfig `yaml:"security"`
	Log      string         `yaml:"log"`
}

type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

type MQTTConfig struct {
	ClientID  string `yaml:"client_id"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Keepalive int    `yaml:"keepalive"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	QOS       int    `yaml:"qos"`
	Retain    bool   `yaml:"retain"`
	Prefix    string `yaml:"prefix"`
	Clean     bool   `yaml:"clean"`
}

// SecurityConfig overrides the controller timing defaults. Durations are in
// the units the field names state; zero means "use the default".
type SecurityConfig struct {
	MotionGraceSeconds     int `yaml:"motion_grace_seconds"`
	DisableDurationSeconds int `yaml:"disable_duration_seconds"`
	DeviceTimeoutSeconds   int `yaml:"device_timeout_seconds"`
	HeartbeatSeconds       int `yaml:"heartbeat_seconds"`
	BlinkIntervalMillis    int `yaml:"blink_interval_ms"`
	LookaheadMillis        int `yaml:"lookahead_ms"`
}

func LoadConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Set default values
	if config.Name == "" {
		config.Name = "Security Gateway"
	}
	if config.Serial.Device == "" {
		config.Serial.Device = "/dev/ttyUSB0"
	}
	if config.Serial.Baud == 0 {
		config.Serial.Baud = 9600
	}
	if config.MQTT.Host == "" {
		config.MQTT.Host = "localhost"
	}
	if config.MQTT.Port == 0 {
		config.MQTT.Port = 1883
	}
	if config.MQTT.Keepalive == 0 {
		config.MQTT.Keepalive = 60
	}
	if config.MQTT.Prefix == "" {
		config.MQTT.Prefix = "home/arduino"
	}
	if config.Security.MotionGraceSeconds == 0 {
		config.Security.MotionGraceSeconds = 5
	}
	if config.Security.DisableDurationSeconds == 0 {
		config.Security.DisableDurationSeconds = 60
	}
	if config.Security.DeviceTimeoutSeconds == 0 {
		config.Security.DeviceTimeoutSeconds = 30
	}
	if config.Security.HeartbeatSeconds == 0 {
		config.Security.HeartbeatSeconds = 15
	}
	if config.Security.BlinkIntervalMillis == 0 {
		config.Security.BlinkIntervalMillis = 200
	}
	if config.Security.LookaheadMillis == 0 {
		config.Security.LookaheadMillis = 10
	}
	if config.Log == "" {
		config.Log = "info"
	}

	return &config, nil
}
