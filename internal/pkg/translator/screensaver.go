package translator

import (
	"fmt"
	"strings"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
	"github.com/anicoll/nspanel-gateway/internal/pkg/model"
)

const (
	thermometerIcon = "home-thermometer-outline"
	dimModeFrame    = "dimmode~10~100~6371"
	dateLayout      = "Monday, 02. January 2006"
)

func join(fields ...string) string {
	return strings.Join(fields, "~")
}

// TimeFrame renders the clock shown on the screensaver in the device time zone.
func (t *Translator) TimeFrame(device config.Device) string {
	now := t.now().In(t.location(device))
	return join("time", now.Format("15:04"))
}

func (t *Translator) dateFrame(device config.Device) string {
	now := t.now().In(t.location(device))
	return join("date", now.Format(dateLayout))
}

func (t *Translator) temperatureFrame(value string) string {
	return join("temperature", t.icons.Glyph(thermometerIcon), value+"°C")
}

func (t *Translator) screensaverFrames(device config.Device, st model.DeviceState) []string {
	temperature := ""
	if st.Temperature != nil {
		temperature = *st.Temperature
	}
	frames := []string{
		"X",
		t.TimeFrame(device),
		t.dateFrame(device),
		join("timeout", fmt.Sprint(device.Config.TimeoutToScreensaver)),
		dimModeFrame,
		join("pageType", model.CardScreensaver.String()),
		t.temperatureFrame(temperature),
	}
	weather := t.weather.Get()
	// the panel drops colors sent before the update
	if weather.Update != "" {
		frames = append(frames, weather.Update)
	}
	if weather.Color != "" {
		frames = append(frames, weather.Color)
	}
	return frames
}
