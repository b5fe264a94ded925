package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-autoscaler-agent/dto"
)

// EventSource provides recent scaling events for the /events endpoint.
type EventSource interface {
	Recent(n int) []dto.ScalingEvent
}

// StatusSource reads a deployment's rollout status for the /status
// endpoint.
type StatusSource interface {
	Status(ctx context.Context, namespace, name string) (dto.DeploymentStatus, error)
}

// Server serves /healthz, /metrics, /events and /status.
type Server struct {
	server *http.Server
	logger logr.Logger
}

func NewServer(addr string, telemetry *Telemetry, events EventSource, statuses StatusSource, targets []dto.ServiceTarget, logger logr.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(telemetry.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/events", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(events.Recent(50)); err != nil {
			logger.Error(err, "Failed to encode events")
		}
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		out := make([]dto.DeploymentStatus, 0, len(targets))
		for _, target := range targets {
			status, err := statuses.Status(r.Context(), target.Namespace, target.DeploymentName)
			if err != nil {
				logger.Error(err, "Failed to read deployment status",
					"deployment", target.DeploymentName, "namespace", target.Namespace)
				continue
			}
			out = append(out, status)
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			logger.Error(err, "Failed to encode statuses")
		}
	})

	return &Server{
		server: &http.Server{Addr: addr, Handler: mux},
		logger: logger,
	}
}

// Start serves in the background until the context is cancelled.
func (s *Server) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(err, "Health server shutdown failed")
		}
	}()

	go func() {
		s.logger.Info("Health server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(err, "Health server failed")
		}
	}()
}
