package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	framesPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nspanel_frames_published_total",
			Help: "Frames published to panels, by device.",
		},
		[]string{"device"},
	)
	publishErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nspanel_publish_errors_total",
			Help: "Frames that failed to publish, by device.",
		},
		[]string{"device"},
	)
)

func init() { prometheus.MustRegister(framesPublished, publishErrors) }

type client interface {
	Publish(topic string, payload []byte) error
}

// Publisher sends frame sets to a panel, one message per frame. Failures are logged and
// the remaining frames are still sent.
type Publisher struct {
	client client
	logger *zap.Logger
}

func New(client client) *Publisher {
	return &Publisher{
		client: client,
		logger: zap.L(),
	}
}

// PublishFrames publishes frames in order to topic and returns how many were accepted.
func (p *Publisher) PublishFrames(topic, deviceID string, frames []string) int {
	sent := 0
	for _, frame := range frames {
		if err := p.client.Publish(topic, []byte(frame)); err != nil {
			publishErrors.WithLabelValues(deviceID).Inc()
			p.logger.Error("failed to publish frame",
				zap.String("device", deviceID),
				zap.String("topic", topic),
				zap.String("frame", frame),
				zap.Error(err),
			)
			continue
		}
		sent++
		framesPublished.WithLabelValues(deviceID).Inc()
	}
	if len(frames) > 0 {
		p.logger.Debug("published frames", zap.String("device", deviceID), zap.Int("count", sent), zap.Int("total", len(frames)))
	}
	return sent
}
