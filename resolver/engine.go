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

// Package resolver implements longest-match credential resolution
// over the name tree. A query walks the queried name's ancestors from
// most specific to broadest and dispatches to the first live resolver
// it finds, so a resolver on a deeper namespace always overrides one
// configured higher up.
package resolver

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/beagle/event"
	"github.com/blinklabs-io/beagle/nametree"
	"github.com/blinklabs-io/beagle/offchain"
	"github.com/blinklabs-io/beagle/registry"

	"github.com/prometheus/client_golang/prometheus"
)

type EngineConfig struct {
	Registry     *registry.Registry
	EventBus     *event.EventBus
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	// ChainId is the current chain, the default scope for credential
	// query keys
	ChainId uint64
	// OffchainClient follows redirect signals on the credential
	// surface. Leave nil to surface redirects to the caller instead.
	OffchainClient *offchain.Client
	// Verifier validates gateway proofs on the callback path
	Verifier offchain.Verifier
	CacheTTL time.Duration
}

// Engine is the resolution engine. It owns the address-to-
// implementation binding for in-process credential resolvers and the
// answer cache; all namespace state lives in the registry.
type Engine struct {
	config    EngineConfig
	registry  *registry.Registry
	logger    *slog.Logger
	cache     *answerCache
	metrics   engineMetrics
	resolvers map[nametree.Address]CredentialResolver
	mutex     sync.RWMutex
}

func NewEngine(config EngineConfig) *Engine {
	e := &Engine{
		config:    config,
		registry:  config.Registry,
		logger:    config.Logger,
		cache:     newAnswerCache(config.CacheTTL),
		resolvers: make(map[nametree.Address]CredentialResolver),
	}
	if e.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e.registerMetrics(config.PromRegistry)
	if config.EventBus != nil {
		// Any registry mutation can change what a cached answer would
		// resolve to now
		flush := func(event.Event) { e.cache.flush() }
		config.EventBus.SubscribeFunc(
			registry.RegistrationEventType,
			flush,
		)
		config.EventBus.SubscribeFunc(
			registry.OwnerChangeEventType,
			flush,
		)
		config.EventBus.SubscribeFunc(
			registry.ResolverChangeEventType,
			flush,
		)
		config.EventBus.SubscribeFunc(
			registry.ExpirationEventType,
			flush,
		)
	}
	return e
}

// Bind attaches an in-process credential resolver implementation to a
// resolver address. The registry knows resolvers only by address;
// this mapping is the engine's.
func (e *Engine) Bind(
	addr nametree.Address,
	resolver CredentialResolver,
) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.resolvers[addr] = resolver
}

func (e *Engine) boundResolver(
	addr nametree.Address,
) CredentialResolver {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.resolvers[addr]
}

// SetCredentialResolver attaches a resolver address to the node at
// the given dotted path. The actor must be owner-or-approved and the
// node must not be expired; the zero address is always allowed as a
// removal.
func (e *Engine) SetCredentialResolver(
	actor nametree.Address,
	path string,
	resolverAddr nametree.Address,
) error {
	return e.registry.SetNodeResolver(
		actor,
		nametree.NameId(path),
		resolverAddr,
	)
}

// Resolve decodes an encoded name and dispatches the resolve payload
// to the longest-match resolver along its ancestor chain. The walk
// stops at the most specific node with a resolver attached; if that
// node's lease has lapsed the answer degrades to Empty rather than
// falling through to a broader ancestor.
func (e *Engine) Resolve(name []byte, data []byte) Outcome {
	e.metrics.queries.Inc()
	labels, err := nametree.DecodeName(name)
	if err != nil {
		return Failure{Err: err}
	}
	if entry, ok := e.cache.get(name, data); ok {
		// The cache can outlive the matched node's lease, so a hit is
		// only served while that lease is still running
		expired, err := e.registry.IsExpired(entry.node)
		if err == nil && !expired {
			e.metrics.cacheHits.Inc()
			return Answer{Value: entry.value}
		}
		e.cache.delete(name, data)
	}
	for skip := 0; skip <= len(labels); skip++ {
		id := nametree.NodeIdFromLabels(labels, skip)
		resolverAddr, err := e.registry.Resolver(id)
		if err != nil {
			return Failure{Err: err}
		}
		if resolverAddr.IsZero() {
			continue
		}
		expired, err := e.registry.IsExpired(id)
		if err != nil {
			return Failure{Err: err}
		}
		if expired {
			return Empty{}
		}
		impl := e.boundResolver(resolverAddr)
		if impl == nil {
			e.logger.Warn(
				"resolver attached with no bound implementation",
				"component", "resolver",
				"resolver", resolverAddr,
				"node", id,
			)
			return Failure{Err: NewResolverNotBoundError(resolverAddr)}
		}
		outcome := impl.Resolve(name, data)
		switch o := outcome.(type) {
		case Answer:
			e.cache.set(name, data, o.Value, id)
			e.metrics.answers.Inc()
		case Redirect:
			e.metrics.redirects.Inc()
		}
		return outcome
	}
	return Empty{}
}

// FlushCache drops all cached answers immediately
func (e *Engine) FlushCache() {
	e.cache.flush()
}

// Credential is the provider surface: resolve a query key against an
// encoded identifier (a name or a synthetic address identifier). The
// empty string is the universal no-answer sentinel; only structurally
// invalid input and infrastructure failures return an error.
func (e *Engine) Credential(
	ctx context.Context,
	identifier []byte,
	key string,
) (string, error) {
	query := ParseQueryKey(key, e.config.ChainId)
	outcome := e.Resolve(identifier, EncodeTextQuery(query.String()))
	return e.credentialOutcome(ctx, outcome)
}

// CredentialByAddress resolves a query key against an address and
// coin type via the synthetic address identifier form
func (e *Engine) CredentialByAddress(
	ctx context.Context,
	addr nametree.Address,
	coinType uint64,
	key string,
) (string, error) {
	return e.Credential(
		ctx,
		nametree.EncodeAddressName(addr, coinType),
		key,
	)
}

func (e *Engine) credentialOutcome(
	ctx context.Context,
	outcome Outcome,
) (string, error) {
	switch o := outcome.(type) {
	case Answer:
		return string(o.Value), nil
	case Empty:
		return "", nil
	case Failure:
		return "", o.Err
	case Redirect:
		if e.config.OffchainClient == nil {
			return "", ErrNoOffchainClient
		}
		values, proof, err := e.config.OffchainClient.Fetch(
			ctx,
			o.Lookup,
		)
		if err != nil {
			return "", e.ResolveFailureCallback(err)
		}
		value, err := e.ResolveCallback(values, proof, o.Lookup.Extra)
		if err != nil {
			return "", err
		}
		return string(value), nil
	default:
		return "", nil
	}
}

// ResolveCallback is the redirect success-callback entry point. It
// re-validates the gateway proof against the continuation state and
// the first returned value, then hands that value back in exactly the
// shape a synchronous answer would have taken.
func (e *Engine) ResolveCallback(
	values [][]byte,
	proof []byte,
	extra []byte,
) ([]byte, error) {
	if len(values) == 0 {
		return nil, offchain.ErrNoValues
	}
	if e.config.Verifier != nil {
		if err := e.config.Verifier.Verify(extra, values[0], proof); err != nil {
			return nil, err
		}
	}
	return values[0], nil
}

// ResolveFailureCallback is the redirect failure-callback entry
// point. The original gateway error is re-raised unchanged; wrapping
// or translating it here would break end-to-end error transparency.
func (e *Engine) ResolveFailureCallback(err error) error {
	return err
}
