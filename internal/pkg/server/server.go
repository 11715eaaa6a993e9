package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
	"github.com/anicoll/nspanel-gateway/internal/pkg/model"
)

const shutdownTimeout = 5 * time.Second

type stateStore interface {
	Get(id string) model.DeviceState
}

type configSource interface {
	Config() *config.Config
}

type server struct {
	store   stateStore
	configs configSource
	logger  *zap.Logger
}

func New(store stateStore, configs configSource) *server {
	return &server{store: store, configs: configs, logger: zap.L()}
}

func (s *server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(LoggingMiddleware)
	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/devices/{id}/state", s.deviceState)
	return r
}

// ListenAndServe serves Routes on addr until ctx ends, then shuts down gracefully.
func (s *server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Handler:      s.Routes(),
		Addr:         addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *server) deviceState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.configs.Config().Device(id); !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(config.ErrUnknownDevice.Error()))
		return
	}

	data, err := json.Marshal(s.store.Get(id))
	if err != nil {
		handleError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func handleError(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(err.Error()))
}
