// Package translator turns panel pages and hub entity events into wire frames.
//
// Frames are "~" separated text messages. Every function here is deterministic for a given
// clock, configuration and store content.
package translator

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
	"github.com/anicoll/nspanel-gateway/internal/pkg/model"
	"github.com/anicoll/nspanel-gateway/internal/pkg/state"
)

type stateStore interface {
	Get(id string) model.DeviceState
	MergeUpdate(id string, partial model.DeviceState) model.DeviceState
}

type weatherCache interface {
	Get() state.WeatherFrames
	Set(frames state.WeatherFrames)
}

type Translator struct {
	icons     config.Icons
	store     stateStore
	weather   weatherCache
	now       func() time.Time
	locations sync.Map
	logger    *zap.Logger
}

func WithClock(now func() time.Time) func(*Translator) {
	return func(t *Translator) {
		t.now = now
	}
}

func New(icons config.Icons, store stateStore, weather weatherCache, opts ...func(*Translator)) *Translator {
	t := &Translator{
		icons:   icons,
		store:   store,
		weather: weather,
		now:     time.Now,
		logger:  zap.L(),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Render returns the frames for the current page of st.
func (t *Translator) Render(device config.Device, st model.DeviceState) []string {
	card := st.CurrentPage().Current
	switch card {
	case model.CardScreensaver:
		return t.screensaverFrames(device, st)
	case model.CardAlarm:
		return alarmPageFrames(st)
	default:
		return t.cardFrames(device, card)
	}
}

// TranslateHubEvent updates the store and weather cache from a hub event and returns every
// frame it produced. Signals that fail to parse are skipped on their own.
func (t *Translator) TranslateHubEvent(device config.Device, raw []byte) []Frame {
	frames := []Frame{}
	frames = append(frames, t.translateTemperature(device, raw)...)

	msg := model.HubMessage{}
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.logger.Warn("unable to decode hub event", zap.String("device", device.ID), zap.Error(err))
		return frames
	}
	frames = append(frames, t.translateWeather(device, raw, msg.Event)...)
	frames = append(frames, t.translateAlarm(device, raw, msg.Event)...)
	return frames
}

// location returns the configured zone of the device, falling back to the local zone.
// Zones are cached per device, so an unknown zone is reported once for each device using it.
func (t *Translator) location(device config.Device) *time.Location {
	if device.Config.Timezone == "" {
		return time.Local
	}
	if loc, ok := t.locations.Load(device.ID); ok {
		return loc.(*time.Location)
	}
	loc, err := time.LoadLocation(device.Config.Timezone)
	if err != nil {
		t.logger.Warn("unknown timezone, using local time",
			zap.String("device", device.ID),
			zap.String("timezone", device.Config.Timezone),
			zap.Error(err),
		)
		loc = time.Local
	}
	t.locations.Store(device.ID, loc)
	return loc
}
