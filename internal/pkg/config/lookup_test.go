package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testDevice(cardTypes ...string) Device {
	d := Device{ID: "panel", MQTT: DeviceMQTT{RxTopic: "panel/rx", TxTopic: "panel/tx"}}
	for _, c := range cardTypes {
		d.Cards = append(d.Cards, Card{Type: c})
	}
	return d
}

func TestDevice_DisplayCards(t *testing.T) {
	d := testDevice("screensaver", "cardQR", "Screensaver", "cardThermo")
	got := d.DisplayCards()
	assert.Equal(t, []Card{{Type: "cardQR"}, {Type: "cardThermo"}}, got)
}

func TestDevice_AdjacentCard(t *testing.T) {
	tests := map[string]struct {
		cards   []string
		current string
		forward bool
		want    string
		found   bool
	}{
		"next":               {cards: []string{"cardQR", "cardThermo", "cardHome"}, current: "cardQR", forward: true, want: "cardThermo", found: true},
		"next wraps":         {cards: []string{"cardQR", "cardThermo", "cardHome"}, current: "cardHome", forward: true, want: "cardQR", found: true},
		"prev wraps":         {cards: []string{"cardQR", "cardThermo", "cardHome"}, current: "cardQR", forward: false, want: "cardHome", found: true},
		"prev":               {cards: []string{"cardQR", "cardThermo", "cardHome"}, current: "cardHome", forward: false, want: "cardThermo", found: true},
		"case insensitive":   {cards: []string{"cardQR", "cardThermo"}, current: "cardqr", forward: true, want: "cardThermo", found: true},
		"single card":        {cards: []string{"cardQR"}, current: "cardQR", forward: true, want: "cardQR", found: true},
		"skips screensaver":  {cards: []string{"screensaver", "cardQR", "cardAlarm"}, current: "cardAlarm", forward: true, want: "cardQR", found: true},
		"unknown current":    {cards: []string{"cardQR", "cardThermo"}, current: "cardHome", forward: true},
		"screensaver origin": {cards: []string{"screensaver", "cardQR"}, current: "screensaver", forward: true},
		"no cards":           {current: "cardQR", forward: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := testDevice(tt.cards...).AdjacentCard(tt.current, tt.forward)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got.Type)
		})
	}
}

func TestDevice_EntityByName(t *testing.T) {
	d := Device{Cards: []Card{
		{Type: "screensaver", Entities: []Entity{{Entity: "weather.home", Name: "weather"}}},
		{Type: "cardAlarm", Entities: []Entity{{Entity: "alarm_control_panel.home", Name: "alarm"}}},
	}}

	e, ok := d.EntityByName(EntityAlarm)
	assert.True(t, ok)
	assert.Equal(t, "alarm_control_panel.home", e.Entity)

	_, ok = d.EntityByName(EntityTemperatureSensor)
	assert.False(t, ok)
}

func TestConfig_Entities(t *testing.T) {
	cfg := &Config{Devices: map[string]Device{
		"a": {ID: "a", Cards: []Card{
			{Type: "screensaver", Entities: []Entity{{Entity: "weather.home"}, {Entity: "sensor.t"}}},
			{Type: "cardThermo", Entities: []Entity{{Entity: "sensor.t"}, {Entity: ""}}},
		}},
		"b": {ID: "b"},
	}}

	got := cfg.Entities()
	assert.Equal(t, []string{"weather.home", "sensor.t"}, got["a"])
	assert.Empty(t, got["b"])
}

func TestConfig_DeviceByTopic(t *testing.T) {
	cfg := &Config{Devices: map[string]Device{
		"a": {ID: "a", MQTT: DeviceMQTT{RxTopic: "a/rx", TxTopic: "a/tx"}},
		"b": {ID: "b", MQTT: DeviceMQTT{RxTopic: "b/rx", TxTopic: "b/tx"}},
	}}

	d, ok := cfg.DeviceByTopic("b/tx")
	assert.True(t, ok)
	assert.Equal(t, "b", d.ID)

	_, ok = cfg.DeviceByTopic("b/rx")
	assert.False(t, ok)
}

func TestIcons_Glyph(t *testing.T) {
	icons := Icons{"shield": "S", "empty": ""}
	assert.Equal(t, "S", icons.Glyph("shield"))
	assert.Equal(t, NullGlyph, icons.Glyph("empty"))
	assert.Equal(t, NullGlyph, icons.Glyph("missing"))
	assert.Equal(t, NullGlyph, Icons(nil).Glyph("shield"))
}
