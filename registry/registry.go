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

package registry

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/blinklabs-io/beagle/database"
	"github.com/blinklabs-io/beagle/event"
	"github.com/blinklabs-io/beagle/nametree"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Node is the ledger record for a single name tree node. Nodes are
// never deleted: an expired node simply becomes re-registrable.
type Node struct {
	Owner     nametree.Address `json:"owner"`
	Resolver  nametree.Address `json:"resolver"`
	Label     string           `json:"label"`
	ExpiresAt int64            `json:"expiresAt"`
	Protected bool             `json:"protected"`
}

type RegistryConfig struct {
	Database     *database.Database
	EventBus     *event.EventBus
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	// RootOwner controls the name tree root at boot
	RootOwner nametree.Address
	// SelfAddress is the registry's own account. A node recorded as
	// owned by the registry itself reads back as unowned.
	SelfAddress nametree.Address
	// Admins may extend node expirations
	Admins []nametree.Address
	// Now overrides the ledger clock, mostly for tests
	Now func() time.Time
}

// Registry implements node ownership, expiration-bounded leases,
// operator approval, resolver attachment with global uniqueness, and
// the commit-reveal gate for sensitive mutations. All mutations are
// serialized behind a single mutex, standing in for the globally
// ordered ledger that finalizes operations one at a time.
type Registry struct {
	config   RegistryConfig
	db       *database.Database
	eventBus *event.EventBus
	logger   *slog.Logger
	metrics  struct {
		registrations prometheus.Counter
		transfers     prometheus.Counter
		commits       prometheus.Counter
		reveals       prometheus.Counter
	}
	admins map[nametree.Address]bool
	now    func() time.Time
	mutex  sync.Mutex
}

func NewRegistry(config RegistryConfig) (*Registry, error) {
	r := &Registry{
		config:   config,
		db:       config.Database,
		eventBus: config.EventBus,
		logger:   config.Logger,
		admins:   make(map[nametree.Address]bool),
		now:      config.Now,
	}
	if r.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if r.now == nil {
		r.now = time.Now
	}
	for _, admin := range config.Admins {
		r.admins[admin] = true
	}
	r.registerMetrics(config.PromRegistry)
	if err := r.bootstrapRoot(); err != nil {
		return nil, err
	}
	return r, nil
}

// bootstrapRoot writes the root node record on first startup. The
// root never expires and is always owner-controlled.
func (r *Registry) bootstrapRoot() error {
	return r.db.Update(func(txn *badger.Txn) error {
		existing, err := getNode(txn, nametree.RootNode)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		return putNode(txn, nametree.RootNode, &Node{
			Owner:     r.config.RootOwner,
			ExpiresAt: math.MaxInt64,
		})
	})
}

func getNode(txn *badger.Txn, id nametree.NodeId) (*Node, error) {
	val, err := database.TxGet(txn, database.NodeRecordKey(id.Bytes()))
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var node Node
	if err := json.Unmarshal(val, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

func putNode(txn *badger.Txn, id nametree.NodeId, node *Node) error {
	val, err := json.Marshal(node)
	if err != nil {
		return err
	}
	return txn.Set(database.NodeRecordKey(id.Bytes()), val)
}

func (r *Registry) nodeExpired(node *Node) bool {
	return node.ExpiresAt < r.now().Unix()
}

// authorized re-derives "is owner or approved by the current owner"
// against current state on every call. This is deliberately never
// cached: an approval granted by a since-replaced owner stops
// authorizing anything the moment ownership changes, even though the
// stored approval remains.
func (r *Registry) authorized(
	txn *badger.Txn,
	actor nametree.Address,
	id nametree.NodeId,
	node *Node,
) (bool, error) {
	if node == nil {
		return false, nil
	}
	if actor == node.Owner {
		return true, nil
	}
	val, err := database.TxGet(
		txn,
		database.ApprovalKey(id.Bytes(), actor.Bytes()),
	)
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	granter, err := nametree.AddressFromBytes(val)
	if err != nil {
		return false, err
	}
	return granter == node.Owner, nil
}

// SetSubnameOwner creates or re-registers a child node under a parent
// the actor controls. An unexpired child fails with a
// NodeOccupiedError; the protected flag of an expired child is
// carried forward unchanged across re-registration.
func (r *Registry) SetSubnameOwner(
	actor nametree.Address,
	parentId nametree.NodeId,
	label string,
	owner nametree.Address,
	expiresAt time.Time,
	protected bool,
) (nametree.NodeId, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	childId := nametree.SubnodeId(parentId, label)
	err := r.db.Update(func(txn *badger.Txn) error {
		parent, err := getNode(txn, parentId)
		if err != nil {
			return err
		}
		ok, err := r.authorized(txn, actor, parentId, parent)
		if err != nil {
			return err
		}
		if !ok {
			return NewNotAuthorizedError(actor, parentId)
		}
		child, err := getNode(txn, childId)
		if err != nil {
			return err
		}
		newNode := &Node{
			Owner:     owner,
			Label:     label,
			ExpiresAt: expiresAt.Unix(),
			Protected: protected,
		}
		if child != nil {
			if !r.nodeExpired(child) {
				return NewNodeOccupiedError(
					childId,
					time.Unix(child.ExpiresAt, 0),
				)
			}
			// Carried forward unchanged across re-registration
			newNode.Protected = child.Protected
			newNode.Resolver = child.Resolver
		}
		return putNode(txn, childId, newNode)
	})
	if err != nil {
		return nametree.NodeId{}, err
	}
	r.metrics.registrations.Inc()
	r.logger.Info(
		"registered subname",
		"component", "registry",
		"node", childId,
		"label", label,
		"owner", owner,
	)
	if r.eventBus != nil {
		evt := RegistrationEvent{
			NodeId:    childId,
			ParentId:  parentId,
			Label:     label,
			Owner:     owner,
			ExpiresAt: expiresAt,
			Protected: protected,
		}
		r.eventBus.Publish(
			RegistrationEventType,
			event.NewEvent(RegistrationEventType, evt),
		)
	}
	return childId, nil
}

// SetOwner reassigns ownership of a node the actor controls. There is
// no expiration check: an existing owner can always transfer.
func (r *Registry) SetOwner(
	actor nametree.Address,
	id nametree.NodeId,
	newOwner nametree.Address,
) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	err := r.db.Update(func(txn *badger.Txn) error {
		node, err := getNode(txn, id)
		if err != nil {
			return err
		}
		ok, err := r.authorized(txn, actor, id, node)
		if err != nil {
			return err
		}
		if !ok {
			return NewNotAuthorizedError(actor, id)
		}
		node.Owner = newOwner
		return putNode(txn, id, node)
	})
	if err != nil {
		return err
	}
	r.metrics.transfers.Inc()
	if r.eventBus != nil {
		evt := OwnerChangeEvent{
			NodeId: id,
			Owner:  newOwner,
		}
		r.eventBus.Publish(
			OwnerChangeEventType,
			event.NewEvent(OwnerChangeEventType, evt),
		)
	}
	return nil
}

// SetApproval grants or revokes operator rights for a node. Only the
// current owner may call this; an approval granted by a former owner
// stops authorizing as soon as ownership changes, without an explicit
// revoke step.
func (r *Registry) SetApproval(
	actor nametree.Address,
	id nametree.NodeId,
	operator nametree.Address,
	approved bool,
) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	err := r.db.Update(func(txn *badger.Txn) error {
		node, err := getNode(txn, id)
		if err != nil {
			return err
		}
		if node == nil || node.Owner != actor {
			return NewNotAuthorizedError(actor, id)
		}
		key := database.ApprovalKey(id.Bytes(), operator.Bytes())
		if approved {
			// Record the granting owner so the authorization check can
			// tell whether the grant is still live
			return txn.Set(key, actor.Bytes())
		}
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}
	if r.eventBus != nil {
		evt := ApprovalEvent{
			NodeId:   id,
			Operator: operator,
			Approved: approved,
		}
		r.eventBus.Publish(
			ApprovalEventType,
			event.NewEvent(ApprovalEventType, evt),
		)
	}
	return nil
}

// SetRecord updates a node's owner and resolver in a single reveal.
// It is gated by the commit-reveal protocol and enforces the global
// resolver-uniqueness invariant.
func (r *Registry) SetRecord(
	actor nametree.Address,
	id nametree.NodeId,
	newOwner nametree.Address,
	newResolver nametree.Address,
	secret [32]byte,
) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	err := r.db.Update(func(txn *badger.Txn) error {
		hash := CommitmentHash(id, newOwner, newResolver, secret)
		if err := r.checkCommitment(txn, hash); err != nil {
			return err
		}
		node, err := getNode(txn, id)
		if err != nil {
			return err
		}
		ok, err := r.authorized(txn, actor, id, node)
		if err != nil {
			return err
		}
		if !ok {
			return NewNotAuthorizedError(actor, id)
		}
		if r.nodeExpired(node) {
			return NewNodeExpiredError(id)
		}
		if err := r.updateResolver(txn, id, node, newResolver); err != nil {
			return err
		}
		node.Owner = newOwner
		if err := putNode(txn, id, node); err != nil {
			return err
		}
		return r.consumeCommitment(txn, hash)
	})
	if err != nil {
		return err
	}
	r.metrics.reveals.Inc()
	r.publishRecordChange(id, newOwner, newResolver)
	return nil
}

// SetResolver updates only a node's resolver via commit-reveal. The
// commitment hash is computed with the node's current owner.
func (r *Registry) SetResolver(
	actor nametree.Address,
	id nametree.NodeId,
	newResolver nametree.Address,
	secret [32]byte,
) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	var owner nametree.Address
	err := r.db.Update(func(txn *badger.Txn) error {
		node, err := getNode(txn, id)
		if err != nil {
			return err
		}
		ok, err := r.authorized(txn, actor, id, node)
		if err != nil {
			return err
		}
		if !ok {
			return NewNotAuthorizedError(actor, id)
		}
		hash := CommitmentHash(id, node.Owner, newResolver, secret)
		if err := r.checkCommitment(txn, hash); err != nil {
			return err
		}
		if r.nodeExpired(node) {
			return NewNodeExpiredError(id)
		}
		if err := r.updateResolver(txn, id, node, newResolver); err != nil {
			return err
		}
		owner = node.Owner
		if err := putNode(txn, id, node); err != nil {
			return err
		}
		return r.consumeCommitment(txn, hash)
	})
	if err != nil {
		return err
	}
	r.metrics.reveals.Inc()
	r.publishRecordChange(id, owner, newResolver)
	return nil
}

// SetNodeResolver attaches or removes a resolver without the
// commit-reveal gate. This is the resolution engine's mutation path:
// owner-or-approved only, the node must not be expired, and removal
// (the zero resolver) is always permitted.
func (r *Registry) SetNodeResolver(
	actor nametree.Address,
	id nametree.NodeId,
	newResolver nametree.Address,
) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	err := r.db.Update(func(txn *badger.Txn) error {
		node, err := getNode(txn, id)
		if err != nil {
			return err
		}
		ok, err := r.authorized(txn, actor, id, node)
		if err != nil {
			return err
		}
		if !ok {
			return NewNotAuthorizedError(actor, id)
		}
		if r.nodeExpired(node) {
			return NewNodeExpiredError(id)
		}
		if err := r.updateResolver(txn, id, node, newResolver); err != nil {
			return err
		}
		return putNode(txn, id, node)
	})
	if err != nil {
		return err
	}
	if r.eventBus != nil {
		evt := ResolverChangeEvent{
			NodeId:   id,
			Resolver: newResolver,
		}
		r.eventBus.Publish(
			ResolverChangeEventType,
			event.NewEvent(ResolverChangeEventType, evt),
		)
	}
	return nil
}

// updateResolver applies a resolver change to a node record while
// maintaining the global uniqueness index: at most one active node
// may reference a given resolver at any time
func (r *Registry) updateResolver(
	txn *badger.Txn,
	id nametree.NodeId,
	node *Node,
	newResolver nametree.Address,
) error {
	if !newResolver.IsZero() && newResolver != node.Resolver {
		val, err := database.TxGet(
			txn,
			database.ResolverIndexKey(newResolver.Bytes()),
		)
		if err != nil && !errors.Is(err, database.ErrKeyNotFound) {
			return err
		}
		if err == nil {
			boundId, err := nametree.NodeIdFromBytes(val)
			if err != nil {
				return err
			}
			if boundId != id {
				bound, err := getNode(txn, boundId)
				if err != nil {
					return err
				}
				if bound != nil && !r.nodeExpired(bound) {
					return NewResolverInUseError(newResolver, boundId)
				}
				// The previous binding has lapsed; clear it
				if bound != nil {
					bound.Resolver = nametree.ZeroAddress
					if err := putNode(txn, boundId, bound); err != nil {
						return err
					}
				}
			}
		}
	}
	// Drop the old reverse mapping for this node
	if !node.Resolver.IsZero() && node.Resolver != newResolver {
		err := txn.Delete(
			database.ResolverIndexKey(node.Resolver.Bytes()),
		)
		if err != nil {
			return err
		}
	}
	if !newResolver.IsZero() {
		err := txn.Set(
			database.ResolverIndexKey(newResolver.Bytes()),
			id.Bytes(),
		)
		if err != nil {
			return err
		}
	}
	node.Resolver = newResolver
	return nil
}

func (r *Registry) publishRecordChange(
	id nametree.NodeId,
	owner nametree.Address,
	resolver nametree.Address,
) {
	if r.eventBus == nil {
		return
	}
	r.eventBus.Publish(
		OwnerChangeEventType,
		event.NewEvent(
			OwnerChangeEventType,
			OwnerChangeEvent{NodeId: id, Owner: owner},
		),
	)
	r.eventBus.Publish(
		ResolverChangeEventType,
		event.NewEvent(
			ResolverChangeEventType,
			ResolverChangeEvent{NodeId: id, Resolver: resolver},
		),
	)
}

// SetExpiration extends a node's lease. Only admins may call this,
// and the expiration can never move backwards.
func (r *Registry) SetExpiration(
	actor nametree.Address,
	id nametree.NodeId,
	newExpiresAt time.Time,
) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if !r.admins[actor] {
		return NewNotAuthorizedError(actor, id)
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		node, err := getNode(txn, id)
		if err != nil {
			return err
		}
		if node == nil {
			return ErrNodeNotFound
		}
		if newExpiresAt.Unix() < node.ExpiresAt {
			return NewExpirationNotExtendedError(
				time.Unix(node.ExpiresAt, 0),
				newExpiresAt,
			)
		}
		node.ExpiresAt = newExpiresAt.Unix()
		return putNode(txn, id, node)
	})
	if err != nil {
		return err
	}
	if r.eventBus != nil {
		evt := ExpirationEvent{
			NodeId:    id,
			ExpiresAt: newExpiresAt,
		}
		r.eventBus.Publish(
			ExpirationEventType,
			event.NewEvent(ExpirationEventType, evt),
		)
	}
	return nil
}

// Owner returns a node's current owner. Missing nodes and nodes
// recorded as owned by the registry itself both return the zero
// address (the self-ownership guard).
func (r *Registry) Owner(id nametree.NodeId) (nametree.Address, error) {
	node, err := r.node(id)
	if err != nil || node == nil {
		return nametree.ZeroAddress, err
	}
	if !r.config.SelfAddress.IsZero() &&
		node.Owner == r.config.SelfAddress {
		return nametree.ZeroAddress, nil
	}
	return node.Owner, nil
}

// Resolver returns the resolver attached to a node, or the zero
// address when none is attached or the record is missing
func (r *Registry) Resolver(id nametree.NodeId) (nametree.Address, error) {
	node, err := r.node(id)
	if err != nil || node == nil {
		return nametree.ZeroAddress, err
	}
	return node.Resolver, nil
}

// NodeByResolver returns the node currently bound to a resolver
// address via the uniqueness index
func (r *Registry) NodeByResolver(
	resolver nametree.Address,
) (nametree.NodeId, error) {
	val, err := r.db.Get(database.ResolverIndexKey(resolver.Bytes()))
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return nametree.NodeId{}, nil
		}
		return nametree.NodeId{}, err
	}
	return nametree.NodeIdFromBytes(val)
}

// IsExpired reports whether a node's lease has lapsed. Missing nodes
// count as expired, since they're equally re-registrable.
func (r *Registry) IsExpired(id nametree.NodeId) (bool, error) {
	node, err := r.node(id)
	if err != nil {
		return false, err
	}
	if node == nil {
		return true, nil
	}
	return r.nodeExpired(node), nil
}

// RecordExists reports whether a node record has ever been created
func (r *Registry) RecordExists(id nametree.NodeId) (bool, error) {
	node, err := r.node(id)
	if err != nil {
		return false, err
	}
	return node != nil, nil
}

// NodeRecord returns a copy of the full ledger record for a node, or
// nil when the record does not exist
func (r *Registry) NodeRecord(id nametree.NodeId) (*Node, error) {
	return r.node(id)
}

func (r *Registry) node(id nametree.NodeId) (*Node, error) {
	var ret *Node
	err := r.db.View(func(txn *badger.Txn) error {
		node, err := getNode(txn, id)
		if err != nil {
			return err
		}
		ret = node
		return nil
	})
	return ret, err
}
