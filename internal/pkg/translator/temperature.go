package translator

import (
	"fmt"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
	"github.com/anicoll/nspanel-gateway/internal/pkg/model"
)

// temperatureRegex matches the state of entity in both the flat and the nested "+" shape.
func temperatureRegex(entity string) (*regexp.Regexp, error) {
	return regexp.Compile(fmt.Sprintf(`\B"%s":\{["+:{]*"s":"(.*?)"\B`, regexp.QuoteMeta(entity)))
}

func (t *Translator) translateTemperature(device config.Device, raw []byte) []Frame {
	entity, ok := device.EntityByName(config.EntityTemperatureSensor)
	if !ok {
		return nil
	}
	rgx, err := temperatureRegex(entity.Entity)
	if err != nil {
		t.logger.Warn("invalid temperature entity", zap.String("device", device.ID), zap.String("entity", entity.Entity), zap.Error(err))
		return nil
	}
	m := rgx.FindSubmatch(raw)
	if m == nil {
		return nil
	}
	value := string(m[1])
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		t.logger.Debug("ignoring non numeric temperature", zap.String("device", device.ID), zap.String("state", value))
		return nil
	}
	t.store.MergeUpdate(device.ID, model.DeviceState{Temperature: &value})
	return []Frame{{Card: model.CardScreensaver, Text: t.temperatureFrame(value)}}
}
