package model

// AlarmIcon is the glyph and RGB565 color shown for an alarm state.
type AlarmIcon struct {
	Glyph string `json:"glyph"`
	Color uint32 `json:"color"`
}

type AlarmState struct {
	State string `json:"state"`
	// SupportedModes is a "~" joined list of label~code pairs.
	SupportedModes  string    `json:"supported_modes"`
	CodeArmRequired *bool     `json:"code_arm_required,omitempty"`
	Entity          string    `json:"entity"`
	Icon            AlarmIcon `json:"icon"`
}

// Merge overwrites the fields of a that are present in other.
func (a *AlarmState) Merge(other AlarmState) {
	if other.State != "" {
		a.State = other.State
	}
	if other.SupportedModes != "" {
		a.SupportedModes = other.SupportedModes
	}
	if other.CodeArmRequired != nil {
		v := *other.CodeArmRequired
		a.CodeArmRequired = &v
	}
	if other.Icon.Glyph != "" {
		a.Icon = other.Icon
	}
	if other.Entity != "" {
		a.Entity = other.Entity
	}
}

type DeviceState struct {
	Temperature *string     `json:"temperature,omitempty"`
	Humidity    *string     `json:"humidity,omitempty"`
	AirQuality  *string     `json:"air_quality,omitempty"`
	Page        *Page       `json:"page,omitempty"`
	Alarm       *AlarmState `json:"alarm,omitempty"`
}

// NewDeviceState returns the state of a device nothing has been written for.
func NewDeviceState() DeviceState {
	p := DefaultPage()
	return DeviceState{Page: &p}
}

// Merge applies the present fields of other onto s. Alarm fields merge one by one.
func (s *DeviceState) Merge(other DeviceState) {
	if other.Temperature != nil {
		s.Temperature = ptr(*other.Temperature)
	}
	if other.Humidity != nil {
		s.Humidity = ptr(*other.Humidity)
	}
	if other.AirQuality != nil {
		s.AirQuality = ptr(*other.AirQuality)
	}
	if other.Page != nil {
		s.Page = ptr(*other.Page)
	}
	if other.Alarm != nil {
		if s.Alarm == nil {
			s.Alarm = &AlarmState{}
		}
		s.Alarm.Merge(*other.Alarm)
	}
}

// Clone returns a deep copy so callers never share pointers with a store.
func (s DeviceState) Clone() DeviceState {
	out := DeviceState{}
	if s.Temperature != nil {
		out.Temperature = ptr(*s.Temperature)
	}
	if s.Humidity != nil {
		out.Humidity = ptr(*s.Humidity)
	}
	if s.AirQuality != nil {
		out.AirQuality = ptr(*s.AirQuality)
	}
	if s.Page != nil {
		out.Page = ptr(*s.Page)
	}
	if s.Alarm != nil {
		a := *s.Alarm
		if a.CodeArmRequired != nil {
			a.CodeArmRequired = ptr(*a.CodeArmRequired)
		}
		out.Alarm = &a
	}
	return out
}

// CurrentPage returns the page, or the default when none is set.
func (s DeviceState) CurrentPage() Page {
	if s.Page == nil {
		return DefaultPage()
	}
	return *s.Page
}

func ptr[T any](v T) *T {
	return &v
}

// Ptr is a convenience for building partial states.
func Ptr[T any](v T) *T {
	return ptr(v)
}
