package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/log"

	"github.com/xicodomingues/francinette/metrics"
)

const (
	HealthzHost = "0.0.0.0"
	HealthzPort = "8080"
)

// Config selects where the servers listen
type Config struct {
	MetricsHost string
	MetricsPort int
	HealthzAddr string
}

type Service struct {
	Healthz *HealthzServer
	Metrics *MetricsServer

	cfg Config
}

func New(cfg Config) *Service {
	if cfg.HealthzAddr == "" {
		cfg.HealthzAddr = net.JoinHostPort(HealthzHost, HealthzPort)
	}
	return &Service{
		Healthz: &HealthzServer{},
		Metrics: &MetricsServer{},
		cfg:     cfg,
	}
}

func (s *Service) Start(ctx context.Context) {
	log.Info("service starting")

	go func() {
		addr := s.cfg.HealthzAddr
		log.Info("starting healthz server", "addr", addr)
		if err := s.Healthz.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("error starting healthz server", "err", err)
			metrics.RecordErrorDetails("healthz", err)
		}
	}()

	go func() {
		addr := net.JoinHostPort(s.cfg.MetricsHost, strconv.Itoa(s.cfg.MetricsPort))
		log.Info("starting metrics server", "addr", addr)
		if err := s.Metrics.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("error starting metrics server", "err", err)
			metrics.RecordErrorDetails("metrics", err)
		}
	}()

	log.Info("service started")
}

func (s *Service) Shutdown() {
	log.Info("service shutting down")

	_ = s.Healthz.Shutdown()
	log.Info("healthz stopped")

	_ = s.Metrics.Shutdown()
	log.Info("metrics stopped")

	log.Info("service stopped")
}
