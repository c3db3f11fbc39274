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

package beagle

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/beagle/nametree"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry prometheus.Registerer
	logger       *slog.Logger
	dataDir      string
	// Name tree root control and registry identity
	rootOwner   nametree.Address
	selfAddress nametree.Address
	admins      []nametree.Address
	// Current chain id, the default scope for credential query keys
	chainId uint64
	// Shared secret for gateway proof signing and verification
	gatewaySecret []byte
	// Gateway endpoints handed to clients chasing redirects
	gatewayURLs []string
	// Listen addresses (empty = disabled)
	gatewayListenAddress string
	metricsListenAddress string
	cacheTTL             time.Duration
	shutdownTimeout      time.Duration
	tracing              bool
	tracingStdout        bool
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new beagle config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (n *Node) configValidate() error {
	if n.config.rootOwner.IsZero() {
		return errors.New("no root owner configured")
	}
	return nil
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithPrometheusRegistry specifies the prometheus registerer to use
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithRootOwner specifies the account that controls the name tree root
func WithRootOwner(owner nametree.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.rootOwner = owner
	}
}

// WithSelfAddress specifies the registry's own account for the self-ownership guard
func WithSelfAddress(addr nametree.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.selfAddress = addr
	}
}

// WithAdmins specifies the accounts allowed to extend node expirations
func WithAdmins(admins ...nametree.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.admins = append(c.admins, admins...)
	}
}

// WithChainId specifies the current chain id used as the default query key scope
func WithChainId(chainId uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.chainId = chainId
	}
}

// WithGatewaySecret specifies the shared secret used to sign and verify gateway proofs
func WithGatewaySecret(secret []byte) ConfigOptionFunc {
	return func(c *Config) {
		c.gatewaySecret = secret
	}
}

// WithGatewayURLs specifies the gateway endpoints handed out in redirect signals
func WithGatewayURLs(urls ...string) ConfigOptionFunc {
	return func(c *Config) {
		c.gatewayURLs = append(c.gatewayURLs, urls...)
	}
}

// WithGatewayListenAddress specifies the gateway server listen address. This defaults to disabled
func WithGatewayListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.gatewayListenAddress = addr
	}
}

// WithMetricsListenAddress specifies the prometheus metrics listen address. This defaults to disabled
func WithMetricsListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.metricsListenAddress = addr
	}
}

// WithCacheTTL specifies the answer cache TTL
func WithCacheTTL(ttl time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.cacheTTL = ttl
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithTracing enables tracing. The OTLP-HTTP exporter can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables the stdout exporter for tracing
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}
