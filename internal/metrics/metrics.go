// Package metrics exposes Prometheus collectors and the ops HTTP listener.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	ConnectedSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "runeward_connected_sessions",
		Help: "Open WebSocket sessions.",
	})
	PlayersOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "runeward_players_online",
		Help: "Characters currently in world.",
	})
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "runeward_tick_duration_seconds",
		Help:    "Wall time of one full simulation tick.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
	PacketsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "runeward_packets_total",
		Help: "Accepted inbound packets by type.",
	}, []string{"type"})
	PacketsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "runeward_packets_rejected_total",
		Help: "Rejected inbound packets by reason.",
	}, []string{"reason"})
	FlagsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "runeward_anticheat_flags_total",
		Help: "Anti-cheat flags raised by kind.",
	}, []string{"kind"})
	ExchangeMatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "runeward_exchange_matches_total",
		Help: "Exchange offer matches executed.",
	})
	XPGranted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "runeward_xp_granted_total",
		Help: "Total XP granted across all skills.",
	})
)

// Server is the ops listener serving /metrics and /healthz.
type Server struct {
	srv *http.Server
	log *zap.Logger
}

func NewServer(addr string, log *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return &Server{
		srv: &http.Server{Addr: addr, Handler: mux},
		log: log,
	}
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		s.log.Info("metrics listener up", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("metrics listener failed", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutCtx)
}
