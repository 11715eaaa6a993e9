package gateway

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/anicoll/nspanel-gateway/internal/pkg/contxt"
	"github.com/anicoll/nspanel-gateway/internal/pkg/hass"
)

func (g *Gateway) uplinkWorker(ctx context.Context) error {
	for ctx.Err() == nil {
		msg, ok := contxt.Receive(ctx, g.uplink, g.pollInterval)
		if !ok {
			continue
		}
		g.HandleUplinkMessage(msg.topic, msg.payload)
	}
	return nil
}

func (g *Gateway) downlinkWorker(ctx context.Context) error {
	for ctx.Err() == nil {
		ev, ok := contxt.Receive(ctx, g.downlink, g.pollInterval)
		if !ok {
			continue
		}
		g.handleDownlink(ev)
	}
	return nil
}

func (g *Gateway) broadcaster(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(g.schedule, g.broadcast); err != nil {
		return err
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// superviseHub keeps one hub session alive, reconnecting after a fixed delay until ctx ends.
func (g *Gateway) superviseHub(ctx context.Context) error {
	for ctx.Err() == nil {
		session := g.newSession(g.cfg.Connectivity.Hass, g.cfg.Entities(), g)
		if err := session.Connect(ctx); err != nil {
			hubSessions.WithLabelValues(sessionFailed).Inc()
			g.logger.Error("failed to open hub session", zap.Error(err))
		} else {
			hubSessions.WithLabelValues(sessionConnected).Inc()
			select {
			case <-ctx.Done():
				_ = session.Close()
				return nil
			case err := <-session.Done():
				result := sessionClosed
				if errors.Is(err, hass.ErrAuthInvalid) {
					result = sessionAuthInvalid
				}
				hubSessions.WithLabelValues(result).Inc()
				g.logger.Warn("hub session ended", zap.Error(err), zap.Duration("retry_in", g.reconnectDelay))
			}
			_ = session.Close()
		}
		if !contxt.Sleep(ctx, g.reconnectDelay) {
			return nil
		}
	}
	return nil
}
