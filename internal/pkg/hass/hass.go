// Package hass runs one session against the Home Assistant websocket API: authenticate,
// subscribe every device's entities and hand each event to a Handler.
package hass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
	"github.com/anicoll/nspanel-gateway/internal/pkg/model"
	"github.com/anicoll/nspanel-gateway/pkg/sockets"
)

var (
	ErrAuthInvalid   = errors.New("hub rejected the access token")
	ErrSessionClosed = errors.New("hub session closed")
)

const (
	defaultPort      = 8123
	pingInterval     = 30 * time.Second
	readTimeout      = 60 * time.Second
	handshakeTimeout = 10 * time.Second

	// subscribe_entities answers with every entity state at once, attributes included.
	maxMessageSize = 16 << 20
)

// Handler receives subscription bookkeeping and events. Calls arrive one at a time in
// the order the hub sent them.
type Handler interface {
	ResetSubscriptions()
	OnSubscribed(id int, deviceID string)
	HandleHubEvent(id int, raw []byte)
}

type Session struct {
	cfg      config.Hass
	entities map[string][]string
	handler  Handler
	conn     sockets.Connection
	done     chan error
	doneOnce sync.Once
	id       string
	logger   *zap.Logger
}

// New prepares a session. entities maps a device id to the entity ids it subscribes.
func New(cfg config.Hass, entities map[string][]string, handler Handler) *Session {
	id := uuid.NewString()
	return &Session{
		cfg:      cfg,
		entities: entities,
		handler:  handler,
		done:     make(chan error, 1),
		id:       id,
		logger:   zap.L().With(zap.String("session", id)),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) URL() string {
	port := s.cfg.Port
	if port == 0 {
		port = defaultPort
	}
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(s.cfg.Host, strconv.Itoa(port)),
		Path:   "/api/websocket",
	}
	if s.cfg.SSL {
		u.Scheme = "wss"
	}
	return u.String()
}

// Connect dials the hub. The handshake continues asynchronously; Done reports how the session ended.
func (s *Session) Connect(ctx context.Context) error {
	s.handler.ResetSubscriptions()
	u := s.URL()
	opts := []func(*sockets.Conn){
		sockets.OnMessage(s.onMessage),
		sockets.OnError(s.onError),
		sockets.OnConnected(func(sockets.Connection) {
			s.logger.Info("connected to hub", zap.String("url", u))
		}),
		sockets.WithPingInterval(pingInterval),
		sockets.WithReadTimeout(readTimeout),
		sockets.WithHandshakeTimeout(handshakeTimeout),
		sockets.WithMaxMessageSize(maxMessageSize),
	}
	if s.cfg.SSLSkipVerify {
		opts = append(opts, sockets.InsecureSkipVerify())
	}
	conn := sockets.New(opts...)
	s.conn = conn

	s.logger.Debug("connecting to", zap.String("url", u))
	if err := conn.Dial(ctx, u); err != nil {
		s.logger.Error("failed to connect to", zap.String("url", u), zap.Error(err))
		return fmt.Errorf("failed to connect to hub: %w", err)
	}

	go func() {
		<-conn.Done()
		s.finish(ErrSessionClosed)
	}()
	return nil
}

// Done yields the error that ended the session, once.
func (s *Session) Done() <-chan error {
	return s.done
}

func (s *Session) Close() error {
	s.finish(ErrSessionClosed)
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Session) finish(err error) {
	s.doneOnce.Do(func() {
		s.done <- err
		close(s.done)
	})
}

func (s *Session) onError(err error) {
	s.logger.Warn("hub connection failed", zap.Error(err))
	s.finish(fmt.Errorf("%w: %w", ErrSessionClosed, err))
}

func (s *Session) onMessage(data []byte, c sockets.Connection) {
	msg := model.HubMessage{}
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Warn("unable to decode hub message", zap.ByteString("message", data), zap.Error(err))
		return
	}

	switch msg.Type {
	case model.HubAuthRequired:
		s.send(c, model.AuthRequest{Type: model.HubAuth, AccessToken: s.cfg.Token})
	case model.HubAuthOK:
		s.logger.Info("authenticated with hub")
		s.subscribe(c)
	case model.HubAuthInvalid:
		s.logger.Error("hub rejected the access token", zap.String("message", msg.Message))
		s.finish(ErrAuthInvalid)
		_ = c.Close()
	case model.HubResult:
		if msg.Success != nil && !*msg.Success {
			fields := []zap.Field{zap.Int("subscription", msg.ID)}
			if msg.Error != nil {
				fields = append(fields, zap.String("code", msg.Error.Code), zap.String("error", msg.Error.Message))
			}
			s.logger.Error("hub request failed", fields...)
		}
	case model.HubEventMessage:
		s.handler.HandleHubEvent(msg.ID, data)
	default:
		s.logger.Debug("ignoring hub message", zap.String("type", msg.Type.String()))
	}
}

// subscribe sends one subscribe_entities per device, numbering them from 1.
func (s *Session) subscribe(c sockets.Connection) {
	devices := make([]string, 0, len(s.entities))
	for id := range s.entities {
		devices = append(devices, id)
	}
	sort.Strings(devices)

	next := 0
	for _, deviceID := range devices {
		ids := s.entities[deviceID]
		if len(ids) == 0 {
			s.logger.Debug("device has no entities to subscribe", zap.String("device", deviceID))
			continue
		}
		next++
		s.handler.OnSubscribed(next, deviceID)
		s.logger.Info("subscribing entities", zap.String("device", deviceID), zap.Int("subscription", next), zap.Strings("entities", ids))
		if err := s.send(c, model.SubscribeEntitiesRequest{ID: next, Type: model.HubSubscribeEntities, EntityIDs: ids}); err != nil {
			return
		}
	}
}

func (s *Session) send(c sockets.Connection, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode hub request", zap.Error(err))
		return err
	}
	if err := c.Send(data); err != nil {
		s.logger.Error("failed to send hub request", zap.Error(err))
		return err
	}
	return nil
}
