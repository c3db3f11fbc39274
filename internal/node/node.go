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

package node

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/beagle"
	"github.com/blinklabs-io/beagle/internal/config"
	"github.com/blinklabs-io/beagle/nametree"

	"github.com/prometheus/client_golang/prometheus"
)

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")

	rootOwner, err := nametree.AddressFromHex(cfg.RootOwner)
	if err != nil {
		return fmt.Errorf("invalid root owner address: %w", err)
	}
	selfAddress := nametree.ZeroAddress
	if cfg.SelfAddress != "" {
		selfAddress, err = nametree.AddressFromHex(cfg.SelfAddress)
		if err != nil {
			return fmt.Errorf("invalid self address: %w", err)
		}
	}
	admins := make([]nametree.Address, 0, len(cfg.Admins))
	for _, admin := range cfg.Admins {
		addr, err := nametree.AddressFromHex(admin)
		if err != nil {
			return fmt.Errorf("invalid admin address %q: %w", admin, err)
		}
		admins = append(admins, addr)
	}

	// Parse shutdown timeout
	shutdownTimeout := 30 * time.Second // Default timeout
	if cfg.ShutdownTimeout != "" {
		shutdownTimeout, err = time.ParseDuration(cfg.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid shutdown timeout: %w", err)
		}
	}
	var cacheTTL time.Duration
	if cfg.CacheTTL != "" {
		cacheTTL, err = time.ParseDuration(cfg.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache TTL: %w", err)
		}
	}

	opts := []beagle.ConfigOptionFunc{
		beagle.WithLogger(logger),
		beagle.WithDatabasePath(cfg.DatabasePath),
		beagle.WithRootOwner(rootOwner),
		beagle.WithSelfAddress(selfAddress),
		beagle.WithAdmins(admins...),
		beagle.WithChainId(cfg.ChainId),
		beagle.WithGatewaySecret([]byte(cfg.GatewaySecret)),
		beagle.WithGatewayURLs(cfg.GatewayURLs...),
		beagle.WithCacheTTL(cacheTTL),
		beagle.WithShutdownTimeout(shutdownTimeout),
		beagle.WithTracing(cfg.Tracing),
		beagle.WithTracingStdout(cfg.TracingStdout),
		// Enable metrics with default prometheus registry
		beagle.WithPrometheusRegistry(prometheus.DefaultRegisterer),
	}
	if cfg.GatewayPort > 0 && cfg.GatewaySecret != "" {
		opts = append(opts, beagle.WithGatewayListenAddress(
			fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.GatewayPort),
		))
	}
	if cfg.MetricsPort > 0 {
		opts = append(opts, beagle.WithMetricsListenAddress(
			fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.MetricsPort),
		))
	}
	n, err := beagle.New(beagle.NewConfig(opts...))
	if err != nil {
		return err
	}

	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	// Run node in goroutine
	errChan := make(chan error, 1)
	go func() {
		//nolint:contextcheck
		err := n.Run(signalCtx)
		select {
		case errChan <- err:
		case <-signalCtx.Done():
		}
	}()

	// Wait for signal or error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown")
		if err := n.Stop(); err != nil {
			logger.Error("shutdown error", "error", err)
		}
		return nil
	case err := <-errChan:
		if err != nil {
			return err
		}
	}
	return nil
}
