package translator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
	"github.com/anicoll/nspanel-gateway/internal/pkg/model"
)

const (
	flagEnable  = "enable"
	flagDisable = "disable"
)

type alarmStyle struct {
	icon   string
	color  uint32
	numkey bool
	flash  bool
}

var alarmStyles = map[string]alarmStyle{
	"disarmed":       {icon: "shield-off", color: 3334, numkey: true},
	"armed_home":     {icon: "shield-home", color: 55907, numkey: true},
	"armed_away":     {icon: "shield-lock", color: 55907, numkey: true},
	"armed_night":    {icon: "weather-night", color: 55907, numkey: true},
	"armed_vacation": {icon: "shield-airplane", color: 55907, numkey: true},
	"pending":        {icon: "shield", color: 62848, numkey: true, flash: true},
	"arming":         {icon: "shield", color: 62848, numkey: true, flash: true},
	"triggered":      {icon: "bell-ring", color: 55907, numkey: true, flash: true},
}

type armMode struct {
	bit   int
	label string
}

// supported_features bits of an alarm panel, in display order.
var armModes = []armMode{
	{bit: 1, label: "Arm Home~arm_home"},
	{bit: 2, label: "Arm Away~arm_away"},
	{bit: 4, label: "Arm Night~arm_night"},
	{bit: 32, label: "Arm Vacation~arm_vacation"},
}

func supportedModes(features int) string {
	modes := []string{}
	for _, m := range armModes {
		if features&m.bit != 0 {
			modes = append(modes, m.label)
		}
	}
	return strings.Join(modes, "~")
}

func flag(on bool) string {
	if on {
		return flagEnable
	}
	return flagDisable
}

// AlarmFrame renders the entity update for the alarm card.
func AlarmFrame(a model.AlarmState) string {
	style, known := alarmStyles[a.State]
	glyph, color := "", uint32(0)
	numkey, flash := false, false
	if known {
		glyph, color = a.Icon.Glyph, a.Icon.Color
		numkey, flash = style.numkey, style.flash
		if a.State == "disarmed" && a.CodeArmRequired != nil && !*a.CodeArmRequired {
			numkey = false
		}
	}
	return join(
		"entityUpd",
		a.Entity,
		"1|1",
		a.SupportedModes,
		glyph,
		fmt.Sprint(color),
		flag(numkey),
		flag(flash),
	) + "~"
}

func alarmPageFrames(st model.DeviceState) []string {
	frames := []string{join("pageType", model.CardAlarm.String())}
	if st.Alarm != nil {
		frames = append(frames, AlarmFrame(*st.Alarm))
	}
	return frames
}

func (t *Translator) alarmIcon(alarmState string) model.AlarmIcon {
	style, ok := alarmStyles[alarmState]
	if !ok {
		return model.AlarmIcon{}
	}
	return model.AlarmIcon{Glyph: t.icons.Glyph(style.icon), Color: style.color}
}

func (t *Translator) translateAlarm(device config.Device, raw []byte, ev *model.EntityEvent) []Frame {
	entity, ok := device.EntityByName(config.EntityAlarm)
	if !ok {
		return nil
	}
	es, err := entityState(raw, ev, entity.Entity)
	if err != nil {
		if !errors.Is(err, errEntityMissing) {
			t.logger.Debug("skipping alarm", zap.String("device", device.ID), zap.Error(err))
		}
		return nil
	}

	partial := model.AlarmState{Entity: entity.Entity}
	if es.State != nil {
		partial.State = *es.State
		partial.Icon = t.alarmIcon(*es.State)
	}
	if len(es.Attributes) > 0 {
		attrs := model.AlarmAttributes{}
		if err := json.Unmarshal(es.Attributes, &attrs); err != nil {
			t.logger.Warn("malformed alarm attributes", zap.String("device", device.ID), zap.Error(err))
			return nil
		}
		partial.SupportedModes = supportedModes(attrs.SupportedFeatures)
		codeArmRequired := attrs.CodeArmRequired != nil && *attrs.CodeArmRequired
		partial.CodeArmRequired = &codeArmRequired
	}

	st := t.store.MergeUpdate(device.ID, model.DeviceState{Alarm: &partial})
	return []Frame{{Card: model.CardAlarm, Text: AlarmFrame(*st.Alarm)}}
}
