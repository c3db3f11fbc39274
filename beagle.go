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

// Package beagle wires the naming registry, resolution engine, and
// redirect gateway into a runnable daemon.
package beagle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/blinklabs-io/beagle/database"
	"github.com/blinklabs-io/beagle/event"
	"github.com/blinklabs-io/beagle/gateway"
	"github.com/blinklabs-io/beagle/offchain"
	"github.com/blinklabs-io/beagle/registry"
	"github.com/blinklabs-io/beagle/resolver"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	registry      *registry.Registry
	engine        *resolver.Engine
	gateway       *gateway.Gateway
	metricsServer *http.Server
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(cfg.promRegistry)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Run starts the node and blocks until the context is cancelled or
// Stop is called
func (n *Node) Run(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:      n.config.dataDir,
		Logger:       n.config.logger,
		PromRegistry: n.config.promRegistry,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	// Load registry
	reg, err := registry.NewRegistry(registry.RegistryConfig{
		Database:     n.db,
		EventBus:     n.eventBus,
		Logger:       n.config.logger,
		PromRegistry: n.config.promRegistry,
		RootOwner:    n.config.rootOwner,
		SelfAddress:  n.config.selfAddress,
		Admins:       n.config.admins,
	})
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	n.registry = reg
	// Keep the reverse-lookup name index in sync with the ledger
	n.startNameIndexer()
	// Load resolution engine
	var verifier offchain.Verifier
	if len(n.config.gatewaySecret) > 0 {
		verifier = offchain.NewHMACVerifier(n.config.gatewaySecret)
	}
	n.engine = resolver.NewEngine(resolver.EngineConfig{
		Registry:     n.registry,
		EventBus:     n.eventBus,
		Logger:       n.config.logger,
		PromRegistry: n.config.promRegistry,
		ChainId:      n.config.chainId,
		OffchainClient: offchain.NewClient(offchain.ClientConfig{
			Logger: n.config.logger,
		}),
		Verifier: verifier,
		CacheTTL: n.config.cacheTTL,
	})
	// Start gateway listener
	if n.config.gatewayListenAddress != "" {
		if len(n.config.gatewaySecret) == 0 {
			return errors.New(
				"gateway listener requires a gateway secret",
			)
		}
		n.gateway = gateway.New(gateway.GatewayConfig{
			ListenAddress: n.config.gatewayListenAddress,
			Logger:        n.config.logger,
			Signer: offchain.NewHMACVerifier(
				n.config.gatewaySecret,
			),
			// The gateway answers from the same resolution engine, so
			// anything resolvable on-ledger is also servable off-ledger
			Resolver: n.engine,
		})
		if err := n.gateway.Start(ctx); err != nil {
			return err
		}
	}
	// Start metrics listener
	if n.config.metricsListenAddress != "" {
		if err := n.startMetricsListener(); err != nil {
			return err
		}
	}
	// Wait for shutdown
	select {
	case <-ctx.Done():
		return n.Stop()
	case <-n.done:
		return nil
	}
}

// Registry returns the registry instance
func (n *Node) Registry() *registry.Registry {
	return n.registry
}

// Engine returns the resolution engine instance
func (n *Node) Engine() *resolver.Engine {
	return n.engine
}

// Database returns the database instance
func (n *Node) Database() *database.Database {
	return n.db
}

// EventBus returns the event bus instance
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

// startNameIndexer subscribes to registry events and maintains the
// SQLite reverse-lookup index from them. The index is best-effort:
// failures are logged, never fatal, and authoritative state stays in
// the ledger store.
func (n *Node) startNameIndexer() {
	n.eventBus.SubscribeFunc(
		registry.RegistrationEventType,
		func(evt event.Event) {
			data, ok := evt.Data.(registry.RegistrationEvent)
			if !ok {
				return
			}
			err := n.db.SetName(
				data.NodeId.Bytes(),
				data.ParentId.Bytes(),
				data.Label,
				data.Owner.Bytes(),
				data.ExpiresAt.Unix(),
			)
			if err != nil {
				n.config.logger.Warn(
					"failed to index name",
					"component", "node",
					"error", err,
				)
			}
		},
	)
	n.eventBus.SubscribeFunc(
		registry.OwnerChangeEventType,
		func(evt event.Event) {
			data, ok := evt.Data.(registry.OwnerChangeEvent)
			if !ok {
				return
			}
			err := n.db.SetNameOwner(
				data.NodeId.Bytes(),
				data.Owner.Bytes(),
			)
			if err != nil {
				n.config.logger.Warn(
					"failed to index owner change",
					"component", "node",
					"error", err,
				)
			}
		},
	)
	n.eventBus.SubscribeFunc(
		registry.ExpirationEventType,
		func(evt event.Event) {
			data, ok := evt.Data.(registry.ExpirationEvent)
			if !ok {
				return
			}
			err := n.db.SetNameExpiration(
				data.NodeId.Bytes(),
				data.ExpiresAt.Unix(),
			)
			if err != nil {
				n.config.logger.Warn(
					"failed to index expiration change",
					"component", "node",
					"error", err,
				)
			}
		},
	)
}

func (n *Node) startMetricsListener() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	n.metricsServer = &http.Server{
		Addr:              n.config.metricsListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	n.config.logger.Info(
		"serving prometheus metrics on "+n.config.metricsListenAddress,
		"component", "node",
	)
	go func() {
		if err := n.metricsServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			n.config.logger.Error(
				"metrics listener error",
				"component", "node",
				"error", err,
			)
		}
	}()
	return nil
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	n.config.logger.Debug("shutdown phase 1: stopping new work")

	if n.gateway != nil {
		if stopErr := n.gateway.Stop(ctx); stopErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("gateway shutdown: %w", stopErr),
			)
		}
	}

	if n.metricsServer != nil {
		if stopErr := n.metricsServer.Shutdown(ctx); stopErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("metrics listener shutdown: %w", stopErr),
			)
		}
	}

	// Phase 2: Flush state and close database
	n.config.logger.Debug("shutdown phase 2: flushing state")

	// Stop the event bus first: closing a subscriber waits for any
	// in-flight delivery, so the name indexer cannot be handed events
	// after the store below is closed
	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("database close: %w", closeErr),
			)
		}
	}

	// Phase 3: Cleanup resources
	n.config.logger.Debug("shutdown phase 3: cleanup resources")

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
