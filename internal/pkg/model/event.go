package model

import (
	"encoding/json"
)

// HubEvent is a raw hub payload already resolved to a device.
type HubEvent struct {
	DeviceID string
	Payload  []byte
}

// HubMessageType is the "type" field of a hub websocket message.
type HubMessageType string

func (t HubMessageType) String() string {
	return string(t)
}

const (
	HubAuthRequired      HubMessageType = "auth_required"
	HubAuth              HubMessageType = "auth"
	HubAuthOK            HubMessageType = "auth_ok"
	HubAuthInvalid       HubMessageType = "auth_invalid"
	HubSubscribeEntities HubMessageType = "subscribe_entities"
	HubResult            HubMessageType = "result"
	HubEventMessage      HubMessageType = "event"
)

// AuthRequest answers auth_required with a long lived access token.
type AuthRequest struct {
	Type        HubMessageType `json:"type"`
	AccessToken string         `json:"access_token"`
}

type SubscribeEntitiesRequest struct {
	ID        int            `json:"id"`
	Type      HubMessageType `json:"type"`
	EntityIDs []string       `json:"entity_ids"`
}

type HubError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HubMessage is the generic envelope of every message the hub sends.
type HubMessage struct {
	ID      int            `json:"id,omitempty"`
	Type    HubMessageType `json:"type"`
	Success *bool          `json:"success,omitempty"`
	Error   *HubError      `json:"error,omitempty"`
	Message string         `json:"message,omitempty"`
	Event   *EntityEvent   `json:"event,omitempty"`
}

// EntityEvent carries compressed entity states keyed by entity id.
// "a" holds entities added to the subscription, "c" holds changes.
type EntityEvent struct {
	Added   map[string]json.RawMessage `json:"a,omitempty"`
	Changed map[string]json.RawMessage `json:"c,omitempty"`
	Removed []string                   `json:"r,omitempty"`
}

// Entity returns the raw value for an entity id from either map.
func (e *EntityEvent) Entity(id string) (json.RawMessage, bool) {
	if e == nil {
		return nil, false
	}
	if v, ok := e.Added[id]; ok {
		return v, true
	}
	v, ok := e.Changed[id]
	return v, ok
}

// EntityState is the flat compressed state: s is the state, a the attributes.
type EntityState struct {
	State       *string         `json:"s,omitempty"`
	Attributes  json.RawMessage `json:"a,omitempty"`
	LastChanged float64         `json:"lc,omitempty"`
	Context     json.RawMessage `json:"c,omitempty"`
}

// EntityDiff is the nested shape of a change, with the new values under "+".
type EntityDiff struct {
	Add    *EntityState    `json:"+,omitempty"`
	Remove json.RawMessage `json:"-,omitempty"`
}

type WeatherForecast struct {
	Datetime    string   `json:"datetime"`
	Condition   string   `json:"condition"`
	Temperature *float64 `json:"temperature"`
	TempLow     *float64 `json:"templow"`
}

type WeatherAttributes struct {
	Temperature *float64          `json:"temperature"`
	Humidity    *float64          `json:"humidity"`
	Forecast    []WeatherForecast `json:"forecast"`
}

type AlarmAttributes struct {
	SupportedFeatures int   `json:"supported_features"`
	CodeArmRequired   *bool `json:"code_arm_required"`
}
