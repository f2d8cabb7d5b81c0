// Package server runs an HTTP handler with graceful shutdown and optional automatic HTTPS
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"bibliovault/internal/config"

	"golang.org/x/crypto/acme/autocert"
)

// Server wraps an http.Server for one process
type Server struct {
	name            string
	http            *http.Server
	challenge       *http.Server
	certManager     *autocert.Manager
	shutdownTimeout time.Duration
}

// New creates a server named name listening on port.
// Automatic HTTPS is enabled when tlsCfg lists domains.
func New(name, port string, handler http.Handler, tlsCfg config.TLSConfig, shutdownTimeout time.Duration) *Server {
	s := &Server{
		name: name,
		http: &http.Server{
			Addr:              net.JoinHostPort("", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
	}

	if tlsCfg.Enabled() {
		s.certManager = &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(tlsCfg.Domains...),
			Cache:      autocert.DirCache(tlsCfg.CacheDir),
			Email:      tlsCfg.Email,
		}
		s.http.TLSConfig = s.certManager.TLSConfig()
		s.challenge = &http.Server{
			Addr:              net.JoinHostPort("", tlsCfg.HTTPPort),
			Handler:           s.certManager.HTTPHandler(nil),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return s
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.http.Addr
}

// TLSConfig returns the autocert TLS configuration, nil for plain HTTP
func (s *Server) TLSConfig() *tls.Config {
	return s.http.TLSConfig
}

// Run serves until ctx is cancelled, then shuts down gracefully.
// A listen failure (for example a port already in use) is returned immediately.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	if s.challenge != nil {
		go func() {
			log.Printf("%s: serving ACME challenges on %s", s.name, s.challenge.Addr)
			if err := s.challenge.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("acme challenge listener: %w", err)
			}
		}()
	}

	go func() {
		var err error
		if s.certManager != nil {
			log.Printf("%s: starting HTTPS server on %s", s.name, s.http.Addr)
			err = s.http.ListenAndServeTLS("", "")
		} else {
			log.Printf("%s: starting HTTP server on %s", s.name, s.http.Addr)
			err = s.http.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.shutdown()
		return err
	case <-ctx.Done():
	}

	log.Printf("%s: shutting down server...", s.name)
	if err := s.shutdown(); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Printf("%s: server exiting", s.name)
	return nil
}

// shutdown gives outstanding requests shutdownTimeout to complete
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if s.challenge != nil {
		if err := s.challenge.Shutdown(ctx); err != nil {
			log.Printf("%s: challenge listener shutdown: %v", s.name, err)
		}
	}
	return s.http.Shutdown(ctx)
}
