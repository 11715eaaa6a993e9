package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceState_Merge_AlarmFieldLevel(t *testing.T) {
	s := NewDeviceState()
	s.Merge(DeviceState{Alarm: &AlarmState{State: "armed_away"}})
	s.Merge(DeviceState{Alarm: &AlarmState{Icon: AlarmIcon{Glyph: "x", Color: 55907}}})

	require.NotNil(t, s.Alarm)
	assert.Equal(t, "armed_away", s.Alarm.State)
	assert.Equal(t, AlarmIcon{Glyph: "x", Color: 55907}, s.Alarm.Icon)
}

func TestDeviceState_Merge(t *testing.T) {
	tests := map[string]struct {
		start DeviceState
		in    DeviceState
		check func(t *testing.T, got DeviceState)
	}{
		"temperature overwrites": {
			start: DeviceState{Temperature: Ptr("20.1")},
			in:    DeviceState{Temperature: Ptr("21.5")},
			check: func(t *testing.T, got DeviceState) {
				assert.Equal(t, "21.5", *got.Temperature)
			},
		},
		"absent fields keep values": {
			start: DeviceState{Temperature: Ptr("20.1"), Humidity: Ptr("40")},
			in:    DeviceState{AirQuality: Ptr("good")},
			check: func(t *testing.T, got DeviceState) {
				assert.Equal(t, "20.1", *got.Temperature)
				assert.Equal(t, "40", *got.Humidity)
				assert.Equal(t, "good", *got.AirQuality)
			},
		},
		"page replaces whole": {
			start: NewDeviceState(),
			in:    DeviceState{Page: &Page{Current: CardQR, Previous: CardScreensaver}},
			check: func(t *testing.T, got DeviceState) {
				assert.Equal(t, Page{Current: CardQR, Previous: CardScreensaver}, *got.Page)
			},
		},
		"empty alarm strings do not overwrite": {
			start: DeviceState{Alarm: &AlarmState{State: "disarmed", SupportedModes: "Arm Home~arm_home", Entity: "alarm_control_panel.home"}},
			in:    DeviceState{Alarm: &AlarmState{CodeArmRequired: Ptr(true)}},
			check: func(t *testing.T, got DeviceState) {
				assert.Equal(t, "disarmed", got.Alarm.State)
				assert.Equal(t, "Arm Home~arm_home", got.Alarm.SupportedModes)
				assert.Equal(t, "alarm_control_panel.home", got.Alarm.Entity)
				assert.True(t, *got.Alarm.CodeArmRequired)
			},
		},
		"code arm required can flip to false": {
			start: DeviceState{Alarm: &AlarmState{CodeArmRequired: Ptr(true)}},
			in:    DeviceState{Alarm: &AlarmState{CodeArmRequired: Ptr(false)}},
			check: func(t *testing.T, got DeviceState) {
				assert.False(t, *got.Alarm.CodeArmRequired)
			},
		},
		"icon without glyph is ignored": {
			start: DeviceState{Alarm: &AlarmState{Icon: AlarmIcon{Glyph: "a", Color: 3334}}},
			in:    DeviceState{Alarm: &AlarmState{Icon: AlarmIcon{Color: 1}}},
			check: func(t *testing.T, got DeviceState) {
				assert.Equal(t, AlarmIcon{Glyph: "a", Color: 3334}, got.Alarm.Icon)
			},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := tt.start.Clone()
			got.Merge(tt.in)
			tt.check(t, got)
		})
	}
}

func TestDeviceState_CloneIsDeep(t *testing.T) {
	s := DeviceState{Temperature: Ptr("20"), Alarm: &AlarmState{State: "armed_home", CodeArmRequired: Ptr(true)}}
	c := s.Clone()
	*c.Temperature = "30"
	c.Alarm.State = "triggered"
	*c.Alarm.CodeArmRequired = false

	assert.Equal(t, "20", *s.Temperature)
	assert.Equal(t, "armed_home", s.Alarm.State)
	assert.True(t, *s.Alarm.CodeArmRequired)
}

func TestDeviceState_CurrentPage(t *testing.T) {
	assert.Equal(t, DefaultPage(), DeviceState{}.CurrentPage())
	assert.Equal(t, DefaultPage(), NewDeviceState().CurrentPage())
}
