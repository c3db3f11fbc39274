// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package gateway implements the off-ledger half of the redirect
// protocol: an HTTP server that answers resolution requests forwarded
// by clients chasing a redirect signal, attaching a proof the
// callback entry point can verify.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/blinklabs-io/beagle/offchain"
	"github.com/blinklabs-io/beagle/resolver"
)

type GatewayConfig struct {
	ListenAddress string
	Logger        *slog.Logger
	// Signer produces the proof attached to every answer
	Signer offchain.Signer
	// Resolver answers the decoded resolution requests. It holds the
	// records this gateway serves.
	Resolver resolver.CredentialResolver
}

// Gateway is the redirect gateway HTTP server
type Gateway struct {
	config     GatewayConfig
	logger     *slog.Logger
	httpServer *http.Server
	mu         sync.Mutex
}

func New(cfg GatewayConfig) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "gateway")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8090"
	}
	return &Gateway{
		config: cfg,
		logger: logger,
	}
}

// Start starts the HTTP server in a background goroutine
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.httpServer != nil {
		g.mu.Unlock()
		return errors.New("server already started")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", g.handleRoot)
	mux.HandleFunc("GET /health", g.handleHealth)
	mux.HandleFunc("POST /resolve", g.handleResolve)

	server := &http.Server{
		Addr:              g.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
	}
	g.httpServer = server
	g.mu.Unlock()

	// Start the server with deterministic error detection
	if err := g.startServer(server); err != nil {
		g.mu.Lock()
		g.httpServer = nil
		g.mu.Unlock()
		return err
	}

	g.logger.Info(
		"gateway listener started on " + g.config.ListenAddress,
	)

	// Monitor context for cancellation
	go func() {
		<-ctx.Done()
		g.mu.Lock()
		srv := g.httpServer
		g.httpServer = nil
		g.mu.Unlock()

		if srv != nil {
			g.logger.Debug(
				"context cancelled, shutting down gateway server",
			)
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				30*time.Second,
			)
			defer cancel()
			//nolint:contextcheck
			if err := srv.Shutdown(shutdownCtx); err != nil {
				g.logger.Error(
					"failed to shutdown gateway server on context cancellation",
					"error", err,
				)
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (g *Gateway) Stop(ctx context.Context) error {
	g.mu.Lock()
	srv := g.httpServer
	g.httpServer = nil
	g.mu.Unlock()

	if srv != nil {
		g.logger.Debug("shutting down gateway server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf(
				"failed to shutdown gateway server: %w",
				err,
			)
		}
	}
	return nil
}

// startServer binds the listening socket first so port conflicts are
// detected immediately, then serves in a background goroutine
func (g *Gateway) startServer(server *http.Server) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf(
			"failed to listen for gateway server: %w",
			err,
		)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			g.logger.Error(
				"gateway server error",
				"error", err,
			)
		}
	}()
	return nil
}
