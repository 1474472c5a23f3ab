package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muurk/avrkit/internal/logging"
	"go.uber.org/zap"
)

// Defaults applied by New when the corresponding Config field is zero
const (
	// DefaultPort matches the control port HEOS-era receivers listen on
	DefaultPort = 8080

	// DefaultModelName is the model the simulator identifies as
	DefaultModelName = "AVR-X4500H"
)

// shutdownTimeout bounds how long Shutdown waits for in-flight requests
const shutdownTimeout = 10 * time.Second

// Config holds the simulator configuration
type Config struct {
	Host         string // Interface to bind (empty = all)
	Port         int    // HTTP control port (HEOS-era receivers use 8080, older ones 80)
	TLSPort      int    // HTTPS port (0 disables; real receivers expose 10443)
	ModelName    string // Model served in the device info document
	FriendlyName string // Friendly name served in the device info document
	LogLevel     string
}

// Server simulates the HTTP control surface of a Denon or Marantz
// receiver: the AppCommand0300 settings endpoint, the device info
// document, and a WebSocket feed broadcasting every handled command.
type Server struct {
	config  *Config
	state   *State
	hub     *hub
	httpSrv *http.Server
	tlsSrv  *http.Server
}

// New creates a Server instance
func New(config *Config) (*Server, error) {
	// Initialize logging
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.ModelName == "" {
		config.ModelName = DefaultModelName
	}
	if config.FriendlyName == "" {
		config.FriendlyName = "Denon " + config.ModelName
	}

	return &Server{
		config: config,
		state:  NewState(),
		hub:    newHub(),
	}, nil
}

// Start starts the configured listeners and blocks until a shutdown
// signal or a listener error
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	logging.Info("Starting receiver simulator",
		zap.String("addr", addr),
		zap.String("model", s.config.ModelName),
		zap.String("friendly_name", s.config.FriendlyName),
		zap.String("log_level", s.config.LogLevel),
	)

	go s.hub.run()

	mux := s.routes()
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 2)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http listener: %w", err)
		}
	}()

	if s.config.TLSPort > 0 {
		tlsConfig, err := selfSignedTLSConfig(s.config.Host, s.config.ModelName)
		if err != nil {
			return fmt.Errorf("failed to build TLS config: %w", err)
		}

		tlsAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.TLSPort)
		s.tlsSrv = &http.Server{
			Addr:              tlsAddr,
			Handler:           mux,
			TLSConfig:         tlsConfig,
			ReadHeaderTimeout: 10 * time.Second,
		}

		logging.Info("Starting HTTPS listener",
			zap.String("addr", tlsAddr),
			zap.String("cert", "self-signed (in-memory)"),
		)
		go func() {
			if err := s.tlsSrv.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
				errChan <- fmt.Errorf("https listener: %w", err)
			}
		}()
	}

	logging.Info("Simulator listening for requests",
		zap.String("addr", addr),
	)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping simulator...")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

// Shutdown stops the listeners, waits for in-flight requests to finish,
// and drops monitor connections
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down simulator...")

	var firstErr error
	if s.tlsSrv != nil {
		if err := s.tlsSrv.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// Monitor connections are hijacked and not covered by Shutdown
	s.hub.stop()

	logging.Sync()
	return firstErr
}
