package config

import (
	"errors"
	"path/filepath"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrUnknownDevice = errors.New("unknown device")
)

// Flags are the process level settings passed on the command line.
type Flags struct {
	Paths       Paths
	LogLevel    string
	HTTPAddr    string
	WatchConfig bool
}

// Paths locates the three configuration files inside Dir.
type Paths struct {
	Dir          string
	Config       string
	Connectivity string
	Icons        string
}

func (p Paths) ConfigFile() string {
	return filepath.Join(p.Dir, p.Config)
}

func (p Paths) ConnectivityFile() string {
	return filepath.Join(p.Dir, p.Connectivity)
}

func (p Paths) IconsFile() string {
	return filepath.Join(p.Dir, p.Icons)
}

// FileNames are the base names a reload should react to.
func (p Paths) FileNames() []string {
	return []string{
		filepath.Base(p.Config),
		filepath.Base(p.Connectivity),
		filepath.Base(p.Icons),
	}
}

type Config struct {
	Connectivity Connectivity      `yaml:"connectivity"`
	Devices      map[string]Device `yaml:"devices"`
	Icons        Icons             `yaml:"-"`
}

type Connectivity struct {
	MQTT MQTT `mapstructure:"mqtt" yaml:"mqtt"`
	Hass Hass `mapstructure:"hass" yaml:"hass"`
}

type MQTT struct {
	Type     string `mapstructure:"type" yaml:"type"`
	ID       string `mapstructure:"id" yaml:"id"`
	Host     string `mapstructure:"host" yaml:"host" env:"MQTT_HOST"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user" env:"MQTT_USER"`
	Password string `mapstructure:"password" yaml:"password" env:"MQTT_PASSWORD"`
}

type Hass struct {
	Type  string `mapstructure:"type" yaml:"type"`
	Host  string `mapstructure:"host" yaml:"host" env:"HASS_HOST"`
	Port  int    `mapstructure:"port" yaml:"port"`
	Token string `mapstructure:"token" yaml:"token" env:"HASS_TOKEN"`
	SSL   bool   `mapstructure:"ssl" yaml:"ssl"`

	// SSLSkipVerify accepts self-signed hub certificates.
	SSLSkipVerify bool `mapstructure:"ssl_skip_verify" yaml:"ssl_skip_verify"`
}

type Model string

const (
	ModelEU Model = "EU"
	ModelUS Model = "US"
)

type Device struct {
	Module string       `mapstructure:"module" yaml:"module"`
	ID     string       `mapstructure:"id" yaml:"id"`
	MQTT   DeviceMQTT   `mapstructure:"mqtt" yaml:"mqtt"`
	Model  Model        `mapstructure:"model" yaml:"model"`
	Config DeviceConfig `mapstructure:"config" yaml:"config"`
	Cards  []Card       `mapstructure:"cards" yaml:"cards"`
}

// DeviceMQTT holds the topics of one panel. The panel listens on RxTopic and publishes on TxTopic.
type DeviceMQTT struct {
	RxTopic string `mapstructure:"rx_topic" yaml:"rx_topic"`
	TxTopic string `mapstructure:"tx_topic" yaml:"tx_topic"`
}

type DeviceConfig struct {
	TimeoutToScreensaver  uint16       `mapstructure:"timeout_to_screensaver" yaml:"timeout_to_screensaver"`
	ScreensaverBrightness []Brightness `mapstructure:"screensaver_brightness" yaml:"screensaver_brightness"`
	Locale                string       `mapstructure:"locale" yaml:"locale"`
	Timezone              string       `mapstructure:"timezone" yaml:"timezone"`
}

type Brightness struct {
	Time  string `mapstructure:"time" yaml:"time"`
	Value uint16 `mapstructure:"value" yaml:"value"`
}

type Card struct {
	Type     string   `mapstructure:"type" yaml:"type"`
	Title    string   `mapstructure:"title" yaml:"title,omitempty"`
	Data     string   `mapstructure:"data" yaml:"data,omitempty"`
	Entities []Entity `mapstructure:"entities" yaml:"entities"`
}

type Entity struct {
	Entity string `mapstructure:"entity" yaml:"entity"`
	Name   string `mapstructure:"name" yaml:"name,omitempty"`
	Icon   string `mapstructure:"icon" yaml:"icon,omitempty"`
}

// Entity role names looked up by EntityByName.
const (
	EntityTemperatureSensor = "temperatureSensor"
	EntityWeather           = "weather"
	EntityAlarm             = "alarm"
)

// Icons maps an icon name to the glyph the panel font renders for it.
type Icons map[string]string

// NullGlyph is sent when an icon name is not configured.
const NullGlyph = "\x00"

func (i Icons) Glyph(name string) string {
	if g, ok := i[name]; ok && g != "" {
		return g
	}
	return NullGlyph
}
