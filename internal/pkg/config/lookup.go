package config

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/anicoll/nspanel-gateway/internal/pkg/model"
)

// DisplayCards returns the configured cards a user can page through, screensaver excluded.
func (d Device) DisplayCards() []Card {
	return lo.Filter(d.Cards, func(c Card, _ int) bool {
		return !strings.EqualFold(c.Type, model.CardScreensaver.String())
	})
}

// Card finds a configured card by type ignoring case.
func (d Device) Card(cardType string) (Card, bool) {
	return lo.Find(d.Cards, func(c Card) bool {
		return strings.EqualFold(c.Type, cardType)
	})
}

// EntityByName returns the first entity across all cards with the given role name.
func (d Device) EntityByName(name string) (Entity, bool) {
	entities := lo.FlatMap(d.Cards, func(c Card, _ int) []Entity {
		return c.Entities
	})
	return lo.Find(entities, func(e Entity) bool {
		return e.Name == name
	})
}

// EntityIDs returns every entity id referenced by the device cards, in order, without duplicates.
func (d Device) EntityIDs() []string {
	ids := lo.FlatMap(d.Cards, func(c Card, _ int) []string {
		return lo.Map(c.Entities, func(e Entity, _ int) string {
			return e.Entity
		})
	})
	return lo.Uniq(lo.Compact(ids))
}

// AdjacentCard returns the card after (forward) or before cardType, wrapping at both ends.
func (d Device) AdjacentCard(cardType string, forward bool) (Card, bool) {
	cards := d.DisplayCards()
	if len(cards) == 0 {
		return Card{}, false
	}
	_, index, found := lo.FindIndexOf(cards, func(c Card) bool {
		return strings.EqualFold(c.Type, cardType)
	})
	if !found {
		return Card{}, false
	}
	n := len(cards)
	if forward {
		return cards[(index+1)%n], true
	}
	return cards[(index-1+n)%n], true
}

func (c *Config) Device(id string) (Device, bool) {
	if c == nil {
		return Device{}, false
	}
	d, ok := c.Devices[id]
	return d, ok
}

// DeviceByTopic resolves the device publishing on the given uplink topic.
func (c *Config) DeviceByTopic(topic string) (Device, bool) {
	if c == nil {
		return Device{}, false
	}
	return lo.Find(c.devicesSorted(), func(d Device) bool {
		return d.MQTT.TxTopic == topic
	})
}

// Entities maps every device id to its entity ids.
func (c *Config) Entities() map[string][]string {
	return lo.MapValues(c.Devices, func(d Device, _ string) []string {
		return d.EntityIDs()
	})
}

// DeviceIDs returns the configured device ids sorted.
func (c *Config) DeviceIDs() []string {
	ids := lo.Keys(c.Devices)
	sort.Strings(ids)
	return ids
}

func (c *Config) devicesSorted() []Device {
	return lo.Map(c.DeviceIDs(), func(id string, _ int) Device {
		return c.Devices[id]
	})
}
