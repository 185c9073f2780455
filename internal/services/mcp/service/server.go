package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	platformgrpc "github.com/louisbranch/ledgerworks/internal/platform/grpc"
	"github.com/louisbranch/ledgerworks/internal/platform/timeouts"
	ledgerapi "github.com/louisbranch/ledgerworks/internal/services/ledger/api/grpc/ledger"
	"github.com/louisbranch/ledgerworks/internal/services/mcp/domain"
)

const (
	serverName    = "ledgerworks-mcp"
	serverVersion = "0.1.0"

	healthCheckInterval = 30 * time.Second
)

// TransportKind selects how the MCP server talks to its client.
type TransportKind string

const (
	TransportStdio TransportKind = "stdio"
	TransportHTTP  TransportKind = "http"
)

// Config configures Run.
type Config struct {
	LedgerAddr string
	Transport  TransportKind
	// HTTPAddr is the listen address for the HTTP transport.
	HTTPAddr string
}

// Server is an MCP server whose tools call the ledger API.
type Server struct {
	mcpServer *mcp.Server
	conn      *grpc.ClientConn
}

// NewServer registers every ledger tool over client.
func NewServer(client domain.LedgerClient) (*Server, error) {
	if client == nil {
		return nil, errors.New("ledger client is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerGovernanceTools(mcpServer, client)
	registerEscrowTools(mcpServer, client)
	registerStakingTools(mcpServer, client)
	registerVaultTools(mcpServer, client)
	registerJournalTools(mcpServer, client)
	return &Server{mcpServer: mcpServer}, nil
}

// Dial connects to the ledger at addr, waits for it to report healthy, and
// builds a server over the connection.
func Dial(ctx context.Context, addr string) (*Server, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("ledger address is required")
	}
	conn, err := platformgrpc.DialWithHealth(ctx, addr, timeouts.GRPCDial, log.Printf)
	if err != nil {
		return nil, fmt.Errorf("connect to ledger at %s: %w", addr, err)
	}
	client, err := ledgerapi.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	server, err := NewServer(client)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	server.conn = conn
	return server, nil
}

// Run dials the ledger and serves MCP until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	if cfg.Transport != TransportStdio && cfg.Transport != TransportHTTP {
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}

	server, err := Dial(ctx, cfg.LedgerAddr)
	if err != nil {
		return err
	}
	defer server.Close()

	healthCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go server.monitorHealth(healthCtx)

	if cfg.Transport == TransportHTTP {
		return server.ServeHTTP(ctx, cfg.HTTPAddr)
	}
	return server.Serve(ctx, &mcp.StdioTransport{})
}

// Serve runs the MCP session over transport until the client disconnects or
// ctx ends.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return errors.New("mcp server is not configured")
	}
	if transport == nil {
		return errors.New("mcp transport is required")
	}
	err := s.mcpServer.Run(ctx, transport)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Handler serves MCP over streamable HTTP.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

// ServeHTTP listens on addr and serves Handler until ctx ends.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = "localhost:8091"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("mcp http listening at %s", listener.Addr())
		serveErr <- httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown mcp http: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// monitorHealth logs when the ledger stops reporting SERVING. Tool calls
// surface their own errors; the MCP session stays up.
func (s *Server) monitorHealth(ctx context.Context) {
	if s.conn == nil {
		return
	}
	client := healthpb.NewHealthClient(s.conn)
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
			resp, err := client.Check(callCtx, &healthpb.HealthCheckRequest{})
			cancel()
			if err != nil {
				log.Printf("ledger health check failed: %v", err)
			} else if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
				log.Printf("ledger health check status: %s", resp.GetStatus())
			}
		}
	}
}

// Close releases the ledger connection.
func (s *Server) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
