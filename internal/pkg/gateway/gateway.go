// Package gateway wires panels to the hub. One Gateway serves one configuration: it owns the
// queues and tasks and is replaced as a whole when the configuration changes.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
	"github.com/anicoll/nspanel-gateway/internal/pkg/contxt"
	"github.com/anicoll/nspanel-gateway/internal/pkg/hass"
	"github.com/anicoll/nspanel-gateway/internal/pkg/model"
	"github.com/anicoll/nspanel-gateway/internal/pkg/mqtt"
	"github.com/anicoll/nspanel-gateway/internal/pkg/translator"
)

var ErrAlreadyStarted = errors.New("gateway already started")

const (
	uplinkQueueSize   = 16
	downlinkQueueSize = 32
	sendTimeout       = 5 * time.Second
	pollInterval      = time.Second
	reconnectDelay    = 5 * time.Second
	broadcastSchedule = "@every 10s"
)

type transport interface {
	Connect() error
	Disconnect()
	Subscribe(topic string, handler mqtt.MessageHandler) error
	Unsubscribe(topics ...string) error
}

type framePublisher interface {
	PublishFrames(topic, deviceID string, frames []string) int
}

type frameTranslator interface {
	Render(device config.Device, st model.DeviceState) []string
	TranslateHubEvent(device config.Device, raw []byte) []translator.Frame
	TimeFrame(device config.Device) string
}

type pageNavigator interface {
	Navigate(device config.Device, ev model.UIEvent) (model.DeviceState, bool)
	Current(deviceID string) model.Page
}

type HubSession interface {
	Connect(ctx context.Context) error
	Done() <-chan error
	Close() error
}

// SessionFactory opens a new hub session for every connection attempt.
type SessionFactory func(cfg config.Hass, entities map[string][]string, handler hass.Handler) HubSession

type uplinkMessage struct {
	topic   string
	payload []byte
}

type Gateway struct {
	cfg        *config.Config
	translator frameTranslator
	navigator  pageNavigator
	transport  transport
	publisher  framePublisher
	newSession SessionFactory

	started  atomic.Bool
	ctx      context.Context
	uplink   chan uplinkMessage
	downlink chan model.HubEvent

	subsMu sync.RWMutex
	subs   map[int]string

	sendTimeout    time.Duration
	pollInterval   time.Duration
	reconnectDelay time.Duration
	schedule       string
	logger         *zap.Logger
}

func WithReconnectDelay(d time.Duration) func(*Gateway) {
	return func(g *Gateway) {
		g.reconnectDelay = d
	}
}

func WithSendTimeout(d time.Duration) func(*Gateway) {
	return func(g *Gateway) {
		g.sendTimeout = d
	}
}

func WithBroadcastSchedule(spec string) func(*Gateway) {
	return func(g *Gateway) {
		g.schedule = spec
	}
}

func New(
	cfg *config.Config,
	translator frameTranslator,
	navigator pageNavigator,
	transport transport,
	publisher framePublisher,
	newSession SessionFactory,
	opts ...func(*Gateway),
) *Gateway {
	g := &Gateway{
		cfg:            cfg,
		translator:     translator,
		navigator:      navigator,
		transport:      transport,
		publisher:      publisher,
		newSession:     newSession,
		ctx:            context.Background(),
		uplink:         make(chan uplinkMessage, uplinkQueueSize),
		downlink:       make(chan model.HubEvent, downlinkQueueSize),
		subs:           map[int]string{},
		sendTimeout:    sendTimeout,
		pollInterval:   pollInterval,
		reconnectDelay: reconnectDelay,
		schedule:       broadcastSchedule,
		logger:         zap.L(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Gateway) Config() *config.Config {
	return g.cfg
}

// Run connects the broker, subscribes every panel and runs the workers until ctx ends.
// Subscriptions and the broker connection are released before it returns. A Gateway runs
// once; callbacks from its sessions may outlive Run, so a retry needs a new Gateway.
func (g *Gateway) Run(ctx context.Context) error {
	if !g.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	eg, ctx := errgroup.WithContext(ctx)
	g.ctx = ctx

	if !g.connect(ctx) {
		return nil
	}
	defer g.transport.Disconnect()

	topics := []string{}
	defer func() {
		if len(topics) == 0 {
			return
		}
		if err := g.transport.Unsubscribe(topics...); err != nil {
			g.logger.Warn("failed to unsubscribe", zap.Strings("topics", topics), zap.Error(err))
		}
	}()
	for _, id := range g.cfg.DeviceIDs() {
		device := g.cfg.Devices[id]
		if err := g.transport.Subscribe(device.MQTT.TxTopic, g.enqueueUplink); err != nil {
			return fmt.Errorf("failed to subscribe %s for %s: %w", device.MQTT.TxTopic, device.ID, err)
		}
		topics = append(topics, device.MQTT.TxTopic)
		g.logger.Info("listening to panel", zap.String("device", device.ID), zap.String("topic", device.MQTT.TxTopic))
	}

	eg.Go(func() error {
		return g.uplinkWorker(ctx)
	})
	eg.Go(func() error {
		return g.downlinkWorker(ctx)
	})
	eg.Go(func() error {
		return g.broadcaster(ctx)
	})
	eg.Go(func() error {
		return g.superviseHub(ctx)
	})
	return eg.Wait()
}

// connect retries the broker until it answers. It returns false when ctx ended first.
func (g *Gateway) connect(ctx context.Context) bool {
	for {
		err := g.transport.Connect()
		if err == nil {
			return true
		}
		g.logger.Error("failed to connect to broker", zap.Error(err))
		if !contxt.Sleep(ctx, g.reconnectDelay) {
			return false
		}
	}
}

func (g *Gateway) enqueueUplink(topic string, payload []byte) {
	if !contxt.Send(g.ctx, g.uplink, uplinkMessage{topic: topic, payload: payload}, g.sendTimeout) {
		droppedEvents.WithLabelValues(queueUplink).Inc()
		g.logger.Warn("uplink queue full, dropping message", zap.String("topic", topic))
	}
}

// HandleUplinkMessage turns one panel event into a page change and publishes the new page.
// It returns the frames it published.
func (g *Gateway) HandleUplinkMessage(topic string, payload []byte) []string {
	device, ok := g.cfg.DeviceByTopic(topic)
	if !ok {
		g.logger.Warn("message on unknown topic", zap.String("topic", topic))
		return nil
	}
	ev, err := model.ParseUplink(payload)
	if err != nil {
		g.logger.Debug("ignoring panel message", zap.String("device", device.ID), zap.ByteString("payload", payload), zap.Error(err))
		return nil
	}
	uplinkEvents.WithLabelValues(device.ID, ev.Kind.String()).Inc()

	st, ok := g.navigator.Navigate(device, ev)
	if !ok {
		return nil
	}
	frames := g.translator.Render(device, st)
	g.publisher.PublishFrames(device.MQTT.RxTopic, device.ID, frames)
	return frames
}

func (g *Gateway) ResetSubscriptions() {
	g.subsMu.Lock()
	defer g.subsMu.Unlock()
	g.subs = map[int]string{}
}

func (g *Gateway) OnSubscribed(id int, deviceID string) {
	g.subsMu.Lock()
	defer g.subsMu.Unlock()
	g.subs[id] = deviceID
}

func (g *Gateway) deviceForSubscription(id int) (string, bool) {
	g.subsMu.RLock()
	defer g.subsMu.RUnlock()
	deviceID, ok := g.subs[id]
	return deviceID, ok
}

// HandleHubEvent queues a hub event for the device that owns the subscription.
func (g *Gateway) HandleHubEvent(id int, raw []byte) {
	deviceID, ok := g.deviceForSubscription(id)
	if !ok {
		g.logger.Debug("event for unknown subscription", zap.Int("subscription", id))
		return
	}
	hubEvents.WithLabelValues(deviceID).Inc()
	if !contxt.Send(g.ctx, g.downlink, model.HubEvent{DeviceID: deviceID, Payload: raw}, g.sendTimeout) {
		droppedEvents.WithLabelValues(queueDownlink).Inc()
		g.logger.Warn("downlink queue full, dropping event", zap.String("device", deviceID), zap.Int("subscription", id))
	}
}

// handleDownlink translates a hub event and publishes the frames that belong to the page on screen.
func (g *Gateway) handleDownlink(ev model.HubEvent) []string {
	device, ok := g.cfg.Device(ev.DeviceID)
	if !ok {
		g.logger.Warn("event for unknown device", zap.String("device", ev.DeviceID))
		return nil
	}
	frames := g.translator.TranslateHubEvent(device, ev.Payload)
	out := translator.Filter(frames, g.navigator.Current(device.ID).Current)
	g.publisher.PublishFrames(device.MQTT.RxTopic, device.ID, out)
	return out
}

// broadcast sends the current time to every panel.
func (g *Gateway) broadcast() {
	for _, id := range g.cfg.DeviceIDs() {
		device := g.cfg.Devices[id]
		g.publisher.PublishFrames(device.MQTT.RxTopic, device.ID, []string{g.translator.TimeFrame(device)})
	}
}
