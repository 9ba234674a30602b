package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080")
	BindAddress string `toml:"bind-address"`
	// SerialPort is the path to the ESP8266 serial port (e.g. "/dev/ttyUSB0")
	SerialPort string `toml:"serial-port"`
	// BaudRate is the baud rate of the AT firmware (e.g. 115200)
	BaudRate int `toml:"baud-rate"`
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string `toml:"log-level"`

	WifiSSID     string `toml:"wifi-ssid"`
	WifiPassword string `toml:"wifi-password"`
	// JoinTimeout is how many seconds to wait for the station to associate
	JoinTimeout int `toml:"join-timeout"`

	// Server is the OOCSI broker host name
	Server string `toml:"server"`
	// Name is the OOCSI client name; the broker replaces '#' with digits
	Name string `toml:"name"`
	// Channels are subscribed right after joining
	Channels []string `toml:"channels"`

	// MQTTBroker enables the MQTT relay when set (e.g. "tcp://localhost:1883")
	MQTTBroker   string `toml:"mqtt-broker"`
	MQTTClientID string `toml:"mqtt-client-id"`
	MQTTTopic    string `toml:"mqtt-topic"`
	MQTTUsername string `toml:"mqtt-username"`
	MQTTPassword string `toml:"mqtt-password"`
}

var ErrMissingSSID = errors.New("wifi-ssid is required")

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// Validate reports settings the gateway cannot start without
func (c *Config) Validate() error {
	if c.WifiSSID == "" {
		return ErrMissingSSID
	}
	if c.Server == "" || c.Name == "" {
		return errors.New("server and name are required")
	}
	return nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = 115200
		c.LogLevel = "info"
		c.JoinTimeout = 20
		c.Server = "super.oocsi.net"
		c.Name = "oocsigw_####"
		c.MQTTClientID = "oocsigw"
		c.MQTTTopic = "oocsi"
		return nil
	}
}

// WithFile loads configuration from a TOML file. An empty path is skipped.
// Unknown keys are rejected.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}

		md, err := toml.DecodeFile(path, c)
		if err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("read config %s: unknown key %q", path, undecoded[0].String())
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if ssid := os.Getenv("WIFI_SSID"); ssid != "" {
			c.WifiSSID = ssid
		}

		if password := os.Getenv("WIFI_PASSWORD"); password != "" {
			c.WifiPassword = password
		}

		if server := os.Getenv("OOCSI_SERVER"); server != "" {
			c.Server = server
		}

		if name := os.Getenv("OOCSI_NAME"); name != "" {
			c.Name = name
		}

		if channels := os.Getenv("OOCSI_CHANNELS"); channels != "" {
			c.Channels = splitList(channels)
		}

		if broker := os.Getenv("MQTT_BROKER"); broker != "" {
			c.MQTTBroker = broker
		}

		if id := os.Getenv("MQTT_CLIENT_ID"); id != "" {
			c.MQTTClientID = id
		}

		if topic := os.Getenv("MQTT_TOPIC"); topic != "" {
			c.MQTTTopic = topic
		}

		if user := os.Getenv("MQTT_USERNAME"); user != "" {
			c.MQTTUsername = user
		}

		if password := os.Getenv("MQTT_PASSWORD"); password != "" {
			c.MQTTPassword = password
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "log-level":
				c.LogLevel = f.Value.String()
			case "wifi-ssid":
				c.WifiSSID = f.Value.String()
			case "wifi-password":
				c.WifiPassword = f.Value.String()
			case "server":
				c.Server = f.Value.String()
			case "name":
				c.Name = f.Value.String()
			case "channels":
				c.Channels = splitList(f.Value.String())
			case "mqtt-broker":
				c.MQTTBroker = f.Value.String()
			}
		})
		return nil
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
