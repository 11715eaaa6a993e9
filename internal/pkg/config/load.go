package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type devicesFile struct {
	Devices map[string]Device `yaml:"devices"`
}

// Load reads the device, connectivity and icon files, applies environment overrides and validates the result.
func Load(paths Paths) (*Config, error) {
	devices := devicesFile{}
	if err := readKeyedYAML(paths.ConfigFile(), &devices); err != nil {
		return nil, err
	}

	connectivity := Connectivity{}
	if err := readYAML(paths.ConnectivityFile(), &connectivity); err != nil {
		return nil, err
	}
	if err := env.Parse(&connectivity); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	icons := Icons{}
	if err := readKeyedYAML(paths.IconsFile(), &icons); err != nil {
		return nil, err
	}

	cfg := &Config{
		Connectivity: connectivity,
		Devices:      make(map[string]Device, len(devices.Devices)),
		Icons:        icons,
	}
	for key, d := range devices.Devices {
		if d.ID == "" {
			d.ID = key
		}
		if _, exists := cfg.Devices[d.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate device id %q", ErrInvalidConfig, d.ID)
		}
		cfg.Devices[d.ID] = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readYAML(path string, out any) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	return nil
}

// readKeyedYAML decodes files keyed by identifiers. viper lowercases map keys, so these
// are decoded with yaml.v3 directly to keep device ids and icon names as written.
func readKeyedYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	return nil
}

// Validate checks the settings the gateway cannot run without.
func (c *Config) Validate() error {
	if c.Connectivity.MQTT.Host == "" {
		return fmt.Errorf("%w: mqtt host is required", ErrInvalidConfig)
	}
	if c.Connectivity.Hass.Host == "" {
		return fmt.Errorf("%w: hass host is required", ErrInvalidConfig)
	}
	if c.Connectivity.Hass.Token == "" {
		return fmt.Errorf("%w: hass token is required", ErrInvalidConfig)
	}
	topics := map[string]string{}
	for _, id := range c.DeviceIDs() {
		d := c.Devices[id]
		if d.MQTT.RxTopic == "" || d.MQTT.TxTopic == "" {
			return fmt.Errorf("%w: device %q needs both rx_topic and tx_topic", ErrInvalidConfig, id)
		}
		if d.MQTT.RxTopic == d.MQTT.TxTopic {
			return fmt.Errorf("%w: device %q uses %q for both directions", ErrInvalidConfig, id, d.MQTT.RxTopic)
		}
		for _, topic := range []string{d.MQTT.RxTopic, d.MQTT.TxTopic} {
			if owner, taken := topics[topic]; taken {
				return fmt.Errorf("%w: topic %q used by %q and %q", ErrInvalidConfig, topic, owner, id)
			}
			topics[topic] = id
		}
	}
	return nil
}
