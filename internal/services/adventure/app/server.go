// Package server wires the adventure runtime: storage, controller, the
// WebSocket presenter, the JSON API, and the operator gRPC API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	platformgrpc "github.com/Womp-Womp/AdventureBot/internal/platform/grpc"
	"github.com/Womp-Womp/AdventureBot/internal/platform/timeouts"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/api/grpc/operator"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/api/httpapi"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/auth"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/controller"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/narrative"
	adventuresqlite "github.com/Womp-Womp/AdventureBot/internal/services/adventure/storage/sqlite"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/transport/ws"
)

// Config configures the adventure server.
type Config struct {
	HTTPAddr        string
	GRPCAddr        string
	DBPath          string
	AuthSecret      string
	AdminUserID     string
	StartingBalance float64
	IdleTimeout     time.Duration
	ConfirmTimeout  time.Duration
	Locale          string
	// Debug logs every generator prompt.
	Debug             bool
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the adventure HTTP/WebSocket and gRPC listeners.
type Server struct {
	httpListener    net.Listener
	grpcListener    net.Listener
	httpServer      *http.Server
	grpcServer      *grpc.Server
	health          *health.Server
	store           *adventuresqlite.Store
	controller      *controller.Controller
	shutdownTimeout time.Duration
}

// NewServer opens storage, builds the controller, and binds both listeners.
func NewServer(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, errors.New("http address is required")
	}
	if strings.TrimSpace(cfg.GRPCAddr) == "" {
		return nil, errors.New("grpc address is required")
	}
	if strings.TrimSpace(cfg.AuthSecret) == "" {
		return nil, errors.New("auth secret is required")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = timeouts.Shutdown
	}

	store, err := openStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	hub := ws.NewHub()
	ctrl, err := controller.New(controller.Config{
		StartingBalance: cfg.StartingBalance,
		IdleTimeout:     cfg.IdleTimeout,
		ConfirmTimeout:  cfg.ConfirmTimeout,
		AdminUserID:     cfg.AdminUserID,
		Locale:          cfg.Locale,
	}, controller.Deps{
		Characters: store,
		Ledger:     store,
		Generator:  narrative.Stub{Debug: cfg.Debug},
		Presenter:  hub,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build controller: %w", err)
	}

	tokens := auth.Config{Secret: []byte(cfg.AuthSecret)}
	authenticate := func(token string) (string, error) {
		return auth.Verify(tokens, token)
	}

	mux := http.NewServeMux()
	mux.Handle("/v1/", httpapi.NewRouter(ctrl, authenticate))
	mux.Handle("/", ws.NewHandler(hub, ctrl, authenticate))

	grpcServer, healthServer := platformgrpc.NewServer(operator.AuthInterceptor(authenticate), operator.ServiceName)
	operator.RegisterOperatorServer(grpcServer, operator.NewService(ctrl))

	httpListener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}
	grpcListener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		_ = httpListener.Close()
		_ = store.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}

	return &Server{
		httpListener: httpListener,
		grpcListener: grpcListener,
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
		grpcServer:      grpcServer,
		health:          healthServer,
		store:           store,
		controller:      ctrl,
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

// Run creates and serves an adventure server until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := NewServer(cfg)
	if err != nil {
		return fmt.Errorf("init adventure server: %w", err)
	}
	return server.Serve(ctx)
}

// HTTPAddr returns the bound HTTP address.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// GRPCAddr returns the bound gRPC address.
func (s *Server) GRPCAddr() string {
	if s == nil || s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// Serve runs both listeners until ctx ends or one of them fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("adventure server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	httpErr := make(chan error, 1)
	grpcErr := make(chan error, 1)
	log.Printf("adventure: http listening at %v", s.httpListener.Addr())
	log.Printf("adventure: grpc listening at %v", s.grpcListener.Addr())
	go func() {
		httpErr <- s.httpServer.Serve(s.httpListener)
	}()
	go func() {
		grpcErr <- s.grpcServer.Serve(s.grpcListener)
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-httpErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			err = fmt.Errorf("serve http: %w", err)
		}
	case err = <-grpcErr:
		if errors.Is(err, grpc.ErrServerStopped) {
			err = nil
		}
		if err != nil {
			err = fmt.Errorf("serve gRPC: %w", err)
		}
	}

	if s.health != nil {
		s.health.Shutdown()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if shutdownErr := s.httpServer.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = fmt.Errorf("shutdown http server: %w", shutdownErr)
	}
	s.grpcServer.GracefulStop()
	return err
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	if s.grpcListener != nil {
		_ = s.grpcListener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("adventure: close store err=%v", err)
		}
		s.store = nil
	}
}

func openStore(path string) (*adventuresqlite.Store, error) {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join("data", "adventure.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := adventuresqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open adventure sqlite store: %w", err)
	}
	return store, nil
}
