// Package navigator decides which card a panel shows next.
package navigator

import (
	"go.uber.org/zap"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
	"github.com/anicoll/nspanel-gateway/internal/pkg/model"
)

type store interface {
	Get(id string) model.DeviceState
	MergeUpdate(id string, partial model.DeviceState) model.DeviceState
}

type Navigator struct {
	store  store
	logger *zap.Logger
}

func New(store store) *Navigator {
	return &Navigator{
		store:  store,
		logger: zap.L(),
	}
}

// Resolve is the transition table. It returns false when the event causes no transition.
func Resolve(ev model.UIEvent, page model.Page, device config.Device) (model.Card, bool) {
	switch ev.Kind {
	case model.UIEventStartup, model.UIEventSleepReached:
		return model.CardScreensaver, true
	case model.UIEventExitScreensaver:
		if page.Current == model.CardScreensaver && page.Previous == model.CardScreensaver {
			cards := device.DisplayCards()
			if len(cards) == 0 {
				return model.CardScreensaver, true
			}
			card, err := model.ParseCard(cards[0].Type)
			if err != nil {
				return "", false
			}
			return card, true
		}
		return page.Previous, true
	case model.UIEventNext, model.UIEventPrev:
		next, ok := device.AdjacentCard(ev.Card, ev.Kind == model.UIEventNext)
		if !ok {
			return "", false
		}
		card, err := model.ParseCard(next.Type)
		if err != nil {
			return "", false
		}
		return card, true
	}
	return "", false
}

// Navigate resolves the target for ev and commits it as the current page.
// The returned state is the committed one and is what the render must use.
func (n *Navigator) Navigate(device config.Device, ev model.UIEvent) (model.DeviceState, bool) {
	current := n.store.Get(device.ID)
	target, ok := Resolve(ev, current.CurrentPage(), device)
	if !ok {
		n.logger.Debug("no transition", zap.String("device", device.ID), zap.String("event", ev.Kind.String()), zap.String("card", ev.Card))
		return model.DeviceState{}, false
	}
	return n.Commit(device.ID, target), true
}

// Commit moves the current page to previous and makes target current.
func (n *Navigator) Commit(deviceID string, target model.Card) model.DeviceState {
	page := n.store.Get(deviceID).CurrentPage().Advance(target)
	n.logger.Debug("page committed",
		zap.String("device", deviceID),
		zap.String("current", page.Current.String()),
		zap.String("previous", page.Previous.String()),
	)
	return n.store.MergeUpdate(deviceID, model.DeviceState{Page: &page})
}

// Current returns the committed page of a device.
func (n *Navigator) Current(deviceID string) model.Page {
	return n.store.Get(deviceID).CurrentPage()
}
