package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/ledgerworks/internal/platform/ratelimit"
	"github.com/louisbranch/ledgerworks/internal/platform/requestctx"
	"github.com/louisbranch/ledgerworks/internal/platform/telemetry/metrics"
	"github.com/louisbranch/ledgerworks/internal/platform/timeouts"
	ledgerapi "github.com/louisbranch/ledgerworks/internal/services/ledger/api/grpc/ledger"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/capability"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/domain/clock"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/service"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/sink"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/integrity"
	"github.com/louisbranch/ledgerworks/internal/services/ledger/storage/memory"
	storagesqlite "github.com/louisbranch/ledgerworks/internal/services/ledger/storage/sqlite"
)

// Server hosts the ledger gRPC API and, when configured, a metrics endpoint.
type Server struct {
	listener        net.Listener
	grpcServer      *grpc.Server
	health          *health.Server
	metricsListener net.Listener
	metricsServer   *http.Server
	store           io.Closer
	natsConn        *nats.Conn
	ledger          *service.Ledger
}

// bootstrap holds the startup seams tests replace.
type bootstrap struct {
	loadKeyring  func() (*integrity.Keyring, error)
	loadVerifier func() (*capability.Verifier, error)
	clock        clock.Clock
	listen       func(network, address string) (net.Listener, error)
}

func (b bootstrap) normalize() bootstrap {
	if b.loadKeyring == nil {
		b.loadKeyring = integrity.KeyringFromEnv
	}
	if b.loadVerifier == nil {
		b.loadVerifier = func() (*capability.Verifier, error) { return capability.VerifierFromEnv(time.Now) }
	}
	if b.clock == nil {
		b.clock = clock.System{}
	}
	if b.listen == nil {
		b.listen = net.Listen
	}
	return b
}

// New builds a ledger server listening on addr.
func New(ctx context.Context, addr string, cfg Config) (*Server, error) {
	return newServer(ctx, addr, cfg, bootstrap{})
}

func newServer(ctx context.Context, addr string, cfg Config, b bootstrap) (server *Server, err error) {
	b = b.normalize()

	keyring, err := b.loadKeyring()
	if err != nil {
		return nil, fmt.Errorf("load event keyring: %w", err)
	}
	verifier, err := b.loadVerifier()
	if err != nil {
		return nil, fmt.Errorf("load capability verifier: %w", err)
	}
	if verifier == nil {
		log.Printf("capability verifier not configured; mint and settle are disabled")
	}
	registries, err := service.NewRegistries()
	if err != nil {
		return nil, fmt.Errorf("build registries: %w", err)
	}

	s := &Server{}
	defer func() {
		if err != nil {
			s.close()
		}
	}()

	s.listener, err = b.listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	if strings.TrimSpace(cfg.MetricsAddr) != "" {
		s.metricsListener, err = b.listen("tcp", cfg.MetricsAddr)
		if err != nil {
			return nil, fmt.Errorf("listen on %s: %w", cfg.MetricsAddr, err)
		}
	}

	store, err := openStore(ctx, cfg.DBPath, keyring, registries)
	if err != nil {
		return nil, err
	}
	if closer, ok := store.(io.Closer); ok {
		s.store = closer
	}

	var sinks sink.Multi
	if cfg.LogEvents {
		sinks = append(sinks, sink.Log{Logf: log.Printf})
	}
	if strings.TrimSpace(cfg.NATS.URL) != "" {
		js, conn, err := sink.ConnectJetStream(ctx, cfg.NATS)
		if err != nil {
			return nil, err
		}
		s.natsConn = conn
		sinks = append(sinks, js)
		log.Printf("publishing events to %s on stream %s", cfg.NATS.URL, cfg.NATS.Stream)
	}

	m := metrics.New()
	s.ledger, err = service.New(service.Deps{
		Store:      store,
		Registries: registries,
		Clock:      b.clock,
		Keyring:    keyring,
		Sink:       sinks,
		Metrics:    m,
		Logf:       log.Printf,
	})
	if err != nil {
		return nil, fmt.Errorf("build ledger: %w", err)
	}
	restored, err := s.ledger.RestoreCustody(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore custody: %w", err)
	}
	if restored > 0 {
		log.Printf("restored %d held in wager and pool custody", restored)
	}
	api, err := ledgerapi.NewServer(s.ledger, verifier, log.Printf)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.RateLimitIdleTTL)
	s.grpcServer = grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			requestctx.UnaryServerInterceptor(),
			m.UnaryServerInterceptor(),
			api.UnaryAuthInterceptor(),
			limiter.UnaryServerInterceptor(time.Now),
		),
	)
	s.health = health.NewServer()
	ledgerapi.RegisterLedgerServer(s.grpcServer, api)
	grpc_health_v1.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ledgerapi.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if s.metricsListener != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		s.metricsServer = &http.Server{Handler: mux, ReadHeaderTimeout: timeouts.ReadHeader}
	}
	return s, nil
}

// openStore opens the SQLite journal at path, or an in-memory journal when
// path is empty.
func openStore(ctx context.Context, path string, keyring *integrity.Keyring, registries service.Registries) (storage.EventStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		log.Printf("journal is in memory; set LEDGERWORKS_LEDGER_DB_PATH to persist events")
		return memory.New(keyring), nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := storagesqlite.OpenEvents(ctx, path, keyring, registries.Events)
	if err != nil {
		return nil, fmt.Errorf("open sqlite journal: %w", err)
	}
	streams, err := store.ListStreams(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("list journal streams: %w", err)
	}
	if len(streams) > 0 {
		log.Printf("journal holds %d streams; wallet balances start empty", len(streams))
	}
	return store, nil
}

// Addr returns the gRPC listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// MetricsAddr returns the metrics listener address, empty when disabled.
func (s *Server) MetricsAddr() string {
	if s == nil || s.metricsListener == nil {
		return ""
	}
	return s.metricsListener.Addr().String()
}

// Ledger exposes the services behind the API.
func (s *Server) Ledger() *service.Ledger {
	return s.ledger
}

// Run builds a server on addr and serves until ctx ends.
func Run(ctx context.Context, addr string, cfg Config) error {
	server, err := New(ctx, addr, cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve serves gRPC and metrics until ctx ends or the gRPC server stops.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.close()

	log.Printf("ledger server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()
	if s.metricsServer != nil {
		log.Printf("metrics listening at %v", s.metricsListener.Addr())
		go func() {
			if err := s.metricsServer.Serve(s.metricsListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("serve metrics: %v", err)
			}
		}()
	}

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

func (s *Server) close() {
	if s == nil {
		return
	}
	if s.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown metrics: %v", err)
		}
		cancel()
		s.metricsServer = nil
	} else if s.metricsListener != nil {
		_ = s.metricsListener.Close()
	}
	s.metricsListener = nil
	if s.grpcServer == nil && s.listener != nil {
		_ = s.listener.Close()
	}
	if s.natsConn != nil {
		if err := s.natsConn.Drain(); err != nil {
			log.Printf("drain nats: %v", err)
		}
		s.natsConn = nil
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close journal: %v", err)
		}
		s.store = nil
	}
}
