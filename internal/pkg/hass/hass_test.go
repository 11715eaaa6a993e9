package hass

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
	"github.com/anicoll/nspanel-gateway/internal/pkg/model"
)

type subscription struct {
	id     int
	device string
}

type mockHandler struct {
	mu         sync.Mutex
	resets     int
	subscribed []subscription
	events     chan subscription
}

func newMockHandler() *mockHandler {
	return &mockHandler{events: make(chan subscription, 10)}
}

func (m *mockHandler) ResetSubscriptions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	m.subscribed = nil
}

func (m *mockHandler) OnSubscribed(id int, deviceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribed = append(m.subscribed, subscription{id: id, device: deviceID})
}

func (m *mockHandler) HandleHubEvent(id int, raw []byte) {
	m.events <- subscription{id: id, device: string(raw)}
}

// fakeHub plays the server side of the Home Assistant handshake.
type fakeHub struct {
	token      string
	subscribed chan model.SubscribeEntitiesRequest
	event      string
}

func (f *fakeHub) serve(conn *websocket.Conn) {
	if err := conn.WriteJSON(map[string]string{"type": "auth_required", "ha_version": "2026.10.0"}); err != nil {
		return
	}

	auth := model.AuthRequest{}
	if err := conn.ReadJSON(&auth); err != nil {
		return
	}
	if auth.Type != model.HubAuth || auth.AccessToken != f.token {
		_ = conn.WriteJSON(map[string]string{"type": "auth_invalid", "message": "Invalid access token"})
		_, _, _ = conn.ReadMessage()
		return
	}
	_ = conn.WriteJSON(map[string]string{"type": "auth_ok"})

	for {
		req := model.SubscribeEntitiesRequest{}
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		f.subscribed <- req
		_ = conn.WriteJSON(map[string]any{"id": req.ID, "type": "result", "success": true, "result": nil})
		if f.event != "" {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(f.event))
		}
	}
}

func newFakeHub(t *testing.T, hub *fakeHub) config.Hass {
	t.Helper()
	return startFakeHub(t, hub, httptest.NewServer)
}

func startFakeHub(t *testing.T, hub *fakeHub, newServer func(http.Handler) *httptest.Server) config.Hass {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := newServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/websocket", r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		hub.serve(conn)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return config.Hass{Host: u.Hostname(), Port: port, Token: hub.token}
}

func newTestSession(t *testing.T, cfg config.Hass, entities map[string][]string, handler Handler) *Session {
	t.Helper()
	original := zap.L()
	zap.ReplaceGlobals(zaptest.NewLogger(t))
	t.Cleanup(func() {
		zap.ReplaceGlobals(original)
	})
	return New(cfg, entities, handler)
}

func TestSession_URL(t *testing.T) {
	tests := map[string]struct {
		cfg  config.Hass
		want string
	}{
		"plain with port": {
			cfg:  config.Hass{Host: "hass.local", Port: 8123},
			want: "ws://hass.local:8123/api/websocket",
		},
		"ssl": {
			cfg:  config.Hass{Host: "hass.example.com", Port: 443, SSL: true},
			want: "wss://hass.example.com:443/api/websocket",
		},
		"default port": {
			cfg:  config.Hass{Host: "10.0.0.2"},
			want: "ws://10.0.0.2:8123/api/websocket",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := newTestSession(t, tt.cfg, nil, newMockHandler())
			assert.Equal(t, tt.want, s.URL())
		})
	}
}

func TestSession_HandshakeAndEvents(t *testing.T) {
	event := `{"id":1,"type":"event","event":{"c":{"sensor.hall":{"+":{"s":"21.5"}}}}}`
	hub := &fakeHub{
		token:      "secret",
		subscribed: make(chan model.SubscribeEntitiesRequest, 10),
		event:      event,
	}
	cfg := newFakeHub(t, hub)
	handler := newMockHandler()
	entities := map[string][]string{
		"kitchen": {"sensor.kitchen", "weather.home"},
		"bedroom": {},
		"hall":    {"sensor.hall"},
	}
	s := newTestSession(t, cfg, entities, handler)

	require.NoError(t, s.Connect(context.Background()))
	t.Cleanup(func() { _ = s.Close() })

	got := []model.SubscribeEntitiesRequest{}
	for range 2 {
		select {
		case req := <-hub.subscribed:
			got = append(got, req)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for subscribe_entities")
		}
	}
	assert.Equal(t, []model.SubscribeEntitiesRequest{
		{ID: 1, Type: model.HubSubscribeEntities, EntityIDs: []string{"sensor.hall"}},
		{ID: 2, Type: model.HubSubscribeEntities, EntityIDs: []string{"sensor.kitchen", "weather.home"}},
	}, got)

	select {
	case ev := <-handler.events:
		assert.Equal(t, 1, ev.id)
		assert.JSONEq(t, event, ev.device)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	handler.mu.Lock()
	assert.Equal(t, 1, handler.resets)
	assert.Equal(t, []subscription{{id: 1, device: "hall"}, {id: 2, device: "kitchen"}}, handler.subscribed)
	handler.mu.Unlock()
}

func TestSession_AuthInvalid(t *testing.T) {
	hub := &fakeHub{token: "secret", subscribed: make(chan model.SubscribeEntitiesRequest, 1)}
	cfg := newFakeHub(t, hub)
	cfg.Token = "wrong"
	s := newTestSession(t, cfg, map[string][]string{"kitchen": {"sensor.kitchen"}}, newMockHandler())

	require.NoError(t, s.Connect(context.Background()))
	select {
	case err := <-s.Done():
		assert.ErrorIs(t, err, ErrAuthInvalid)
	case <-time.After(2 * time.Second):
		t.Fatal("session should end on auth_invalid")
	}
}

func TestSession_ConnectFailure(t *testing.T) {
	s := newTestSession(t, config.Hass{Host: "127.0.0.1", Port: 1}, nil, newMockHandler())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, s.Connect(ctx))
}

func TestSession_TLS(t *testing.T) {
	tests := map[string]struct {
		skipVerify bool
		wantErr    bool
	}{
		"self-signed certificate rejected": {
			wantErr: true,
		},
		"self-signed certificate accepted when verification is skipped": {
			skipVerify: true,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			hub := &fakeHub{token: "secret", subscribed: make(chan model.SubscribeEntitiesRequest, 1)}
			cfg := startFakeHub(t, hub, httptest.NewTLSServer)
			cfg.SSL = true
			cfg.SSLSkipVerify = tt.skipVerify
			s := newTestSession(t, cfg, map[string][]string{"hall": {"sensor.hall"}}, newMockHandler())

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			err := s.Connect(ctx)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			select {
			case req := <-hub.subscribed:
				assert.Equal(t, []string{"sensor.hall"}, req.EntityIDs)
			case <-time.After(2 * time.Second):
				t.Fatal("timed out waiting for subscribe_entities over TLS")
			}
		})
	}
}

func TestSession_CloseEndsSession(t *testing.T) {
	hub := &fakeHub{token: "secret", subscribed: make(chan model.SubscribeEntitiesRequest, 1)}
	cfg := newFakeHub(t, hub)
	s := newTestSession(t, cfg, nil, newMockHandler())

	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Close())
	select {
	case err := <-s.Done():
		assert.ErrorIs(t, err, ErrSessionClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("session should be done after Close")
	}
}

func TestSession_FailedResultIsLogged(t *testing.T) {
	s := newTestSession(t, config.Hass{}, nil, newMockHandler())
	msg, err := json.Marshal(map[string]any{
		"id": 3, "type": "result", "success": false,
		"error": map[string]string{"code": "invalid_format", "message": "bad entity"},
	})
	require.NoError(t, err)
	// Must not panic or end the session.
	s.onMessage(msg, nil)
	select {
	case err := <-s.Done():
		t.Fatalf("unexpected end of session: %v", err)
	default:
	}
}
