package mqtt

import (
	"errors"
	"fmt"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
)

var (
	ErrNotConnected = errors.New("mqtt client not connected")
	ErrTimeout      = errors.New("mqtt operation timed out")
)

const (
	operationTimeout = time.Second * 5
	defaultPort      = 1883
	clientIDPrefix   = "nspanel-gateway"

	qosAtMostOnce  byte = 0
	qosExactlyOnce byte = 2
)

// MessageHandler receives the topic and payload of an incoming message.
type MessageHandler func(topic string, payload []byte)

type service struct {
	client paho_mqtt.Client
	logger *zap.Logger
}

// NewClient builds a paho client for the broker in cfg.
func NewClient(cfg config.MQTT) paho_mqtt.Client {
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	clientID := cfg.ID
	if clientID == "" {
		clientID = fmt.Sprintf("%s-%s", clientIDPrefix, uuid.NewString())
	}
	logger := zap.L()

	opts := paho_mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, port)).
		SetClientID(clientID).
		SetUsername(cfg.User).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(operationTimeout).
		SetConnectionLostHandler(func(_ paho_mqtt.Client, err error) {
			logger.Warn("mqtt connection lost", zap.Error(err))
		}).
		SetOnConnectHandler(func(_ paho_mqtt.Client) {
			logger.Info("mqtt connected", zap.String("client_id", clientID))
		})
	return paho_mqtt.NewClient(opts)
}

func New(client paho_mqtt.Client) *service {
	return &service{
		client: client,
		logger: zap.L(),
	}
}

func wait(token paho_mqtt.Token) error {
	if !token.WaitTimeout(operationTimeout) {
		return ErrTimeout
	}
	return token.Error()
}

func (s *service) Connect() error {
	if err := wait(s.client.Connect()); err != nil {
		return fmt.Errorf("unable to connect: %w", err)
	}
	return nil
}

func (s *service) Disconnect() {
	s.client.Disconnect(250)
}

// Subscribe registers handler for topic with at most once delivery.
func (s *service) Subscribe(topic string, handler MessageHandler) error {
	if !s.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	logger := s.logger
	callback := func(_ paho_mqtt.Client, msg paho_mqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("mqtt handler panicked", zap.String("topic", msg.Topic()), zap.Any("panic", r))
			}
		}()
		handler(msg.Topic(), msg.Payload())
	}
	if err := wait(s.client.Subscribe(topic, qosAtMostOnce, callback)); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	s.logger.Info("subscribed", zap.String("topic", topic))
	return nil
}

func (s *service) Unsubscribe(topics ...string) error {
	if len(topics) == 0 || !s.client.IsConnectionOpen() {
		return nil
	}
	if err := wait(s.client.Unsubscribe(topics...)); err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}

// Publish sends payload with exactly once delivery, not retained.
func (s *service) Publish(topic string, payload []byte) error {
	if !s.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	if err := wait(s.client.Publish(topic, qosExactlyOnce, false, payload)); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
