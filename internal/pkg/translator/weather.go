package translator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
	"github.com/anicoll/nspanel-gateway/internal/pkg/model"
	"github.com/anicoll/nspanel-gateway/internal/pkg/state"
)

const (
	forecastDays       = 4
	missingTemperature = -99.9
)

// weatherIcons maps a hub weather condition to an icon name.
var weatherIcons = map[string]string{
	"clear-night":     "weather-night",
	"cloudy":          "weather-cloudy",
	"exceptional":     "alert-circle-outline",
	"fog":             "weather-fog",
	"hail":            "weather-hail",
	"lightning-rainy": "weather-lightning-rainy",
	"partlycloudy":    "weather-partly-cloudy",
	"pouring":         "weather-pouring",
	"rainy":           "weather-rainy",
	"snowy":           "weather-snowy",
	"snowy-rainy":     "weather-snowy-rainy",
	"sunny":           "weather-sunny",
	"windy":           "weather-windy",
	"windy-variant":   "weather-windy-variant",
}

// weatherColors maps a condition to an RGB565 color.
var weatherColors = map[string]uint32{
	"partlycloudy":    35957,
	"windy":           35957,
	"clear-night":     35957,
	"windy-variant":   35957,
	"cloudy":          31728,
	"exceptional":     63488,
	"fog":             21130,
	"hail":            65535,
	"snowy":           65535,
	"lightning":       65120,
	"lightning-rainy": 50400,
	"pouring":         249,
	"rainy":           33759,
	"snowy-rainy":     44479,
	"sunny":           63469,
}

type colorSlot struct {
	name  string
	value uint32
}

// screensaverColors is the default screensaver palette in panel order.
var screensaverColors = []colorSlot{
	{"background", 0},
	{"time", 65535},
	{"timeAMPM", 65535},
	{"date", 65535},
	{"tMainIcon", 65535},
	{"tMainText", 65535},
	{"tForecast1", 65535},
	{"tForecast2", 65535},
	{"tForecast3", 65535},
	{"tForecast4", 65535},
	{"tF1Icon", 65535},
	{"tF2Icon", 65535},
	{"tF3Icon", 65535},
	{"tF4Icon", 65535},
	{"tForecast1Val", 65535},
	{"tForecast2Val", 65535},
	{"tForecast3Val", 65535},
	{"tForecast4Val", 65535},
	{"bar", 65535},
	{"tMRIcon", 65535},
	{"tMR", 65535},
	{"tTimeAdd", 65535},
}

var errShortForecast = errors.New("forecast has fewer than 4 entries")

func (t *Translator) weatherGlyph(condition string) string {
	name, ok := weatherIcons[condition]
	if !ok {
		return config.NullGlyph
	}
	return t.icons.Glyph(name)
}

func temperature(v *float64) float64 {
	if v == nil {
		return missingTemperature
	}
	return *v
}

// ColorFrame renders the palette with the icon slots colored by their conditions.
func ColorFrame(conditions map[string]string) string {
	var b strings.Builder
	b.WriteString("color")
	for _, slot := range screensaverColors {
		value := slot.value
		if condition, ok := conditions[slot.name]; ok {
			if c, ok := weatherColors[condition]; ok {
				value = c
			}
		}
		fmt.Fprintf(&b, "~%d", value)
	}
	return b.String()
}

func (t *Translator) weatherFrames(condition string, attrs model.WeatherAttributes) (state.WeatherFrames, error) {
	if len(attrs.Forecast) < forecastDays {
		return state.WeatherFrames{}, errShortForecast
	}

	var b strings.Builder
	fmt.Fprintf(&b, "weatherUpdate~%s~%.1f°C~", t.weatherGlyph(condition), temperature(attrs.Temperature))
	conditions := map[string]string{"tMainIcon": condition}
	for i, f := range attrs.Forecast[:forecastDays] {
		day, err := time.Parse(time.RFC3339, f.Datetime)
		if err != nil {
			return state.WeatherFrames{}, fmt.Errorf("forecast %d datetime: %w", i, err)
		}
		fmt.Fprintf(&b, "%s~%s~%.1f°C~%.1f°C~",
			day.Weekday().String()[:3],
			t.weatherGlyph(f.Condition),
			temperature(f.Temperature),
			temperature(f.TempLow),
		)
		conditions[fmt.Sprintf("tF%dIcon", i+1)] = f.Condition
	}
	return state.WeatherFrames{Update: b.String(), Color: ColorFrame(conditions)}, nil
}

func (t *Translator) translateWeather(device config.Device, raw []byte, ev *model.EntityEvent) []Frame {
	entity, ok := device.EntityByName(config.EntityWeather)
	if !ok {
		return nil
	}
	es, err := entityState(raw, ev, entity.Entity)
	if err != nil {
		if !errors.Is(err, errEntityMissing) {
			t.logger.Debug("skipping weather", zap.String("device", device.ID), zap.Error(err))
		}
		return nil
	}

	attrs := model.WeatherAttributes{}
	if len(es.Attributes) == 0 {
		t.logger.Debug("weather event without attributes", zap.String("device", device.ID))
		return nil
	}
	if err := json.Unmarshal(es.Attributes, &attrs); err != nil {
		t.logger.Warn("malformed weather attributes", zap.String("device", device.ID), zap.Error(err))
		return nil
	}
	condition := ""
	if es.State != nil {
		condition = *es.State
	}
	frames, err := t.weatherFrames(condition, attrs)
	if err != nil {
		t.logger.Debug("skipping weather", zap.String("device", device.ID), zap.Error(err))
		return nil
	}

	t.weather.Set(frames)
	return []Frame{
		{Card: model.CardScreensaver, Text: frames.Update},
		{Card: model.CardScreensaver, Text: frames.Color},
	}
}
