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
	"errors"
	"fmt"
	"time"

	"github.com/blinklabs-io/beagle/nametree"
)

var (
	ErrNodeNotFound = errors.New(
		"node record does not exist",
	)
	ErrUnknownCommitment = errors.New(
		"no matching commitment found",
	)
	ErrCommitmentExpired = errors.New(
		"commitment exceeds maximum age",
	)
	ErrSelfOwner = errors.New(
		"registry cannot be made a node owner",
	)
)

// NotAuthorizedError indicates the acting account is neither the
// owner nor an approved operator for the target node
type NotAuthorizedError struct {
	actor nametree.Address
	node  nametree.NodeId
}

func NewNotAuthorizedError(
	actor nametree.Address,
	node nametree.NodeId,
) NotAuthorizedError {
	return NotAuthorizedError{
		actor: actor,
		node:  node,
	}
}

func (e NotAuthorizedError) Actor() nametree.Address {
	return e.actor
}

func (e NotAuthorizedError) Node() nametree.NodeId {
	return e.node
}

func (e NotAuthorizedError) Error() string {
	return fmt.Sprintf(
		"account %s is not authorized for node %s",
		e.actor,
		e.node,
	)
}

// NodeOccupiedError indicates an attempt to register a name whose
// current lease has not yet expired
type NodeOccupiedError struct {
	node      nametree.NodeId
	expiresAt time.Time
}

func NewNodeOccupiedError(
	node nametree.NodeId,
	expiresAt time.Time,
) NodeOccupiedError {
	return NodeOccupiedError{
		node:      node,
		expiresAt: expiresAt,
	}
}

func (e NodeOccupiedError) Node() nametree.NodeId {
	return e.node
}

func (e NodeOccupiedError) ExpiresAt() time.Time {
	return e.expiresAt
}

func (e NodeOccupiedError) Error() string {
	return fmt.Sprintf(
		"node %s is occupied until %s",
		e.node,
		e.expiresAt.UTC().Format(time.RFC3339),
	)
}

// ResolverInUseError indicates a resolver address already bound to
// another active node. It names the conflicting node.
type ResolverInUseError struct {
	resolver nametree.Address
	node     nametree.NodeId
}

func NewResolverInUseError(
	resolver nametree.Address,
	node nametree.NodeId,
) ResolverInUseError {
	return ResolverInUseError{
		resolver: resolver,
		node:     node,
	}
}

func (e ResolverInUseError) Resolver() nametree.Address {
	return e.resolver
}

func (e ResolverInUseError) Node() nametree.NodeId {
	return e.node
}

func (e ResolverInUseError) Error() string {
	return fmt.Sprintf(
		"resolver %s is already in use by node %s",
		e.resolver,
		e.node,
	)
}

// NodeExpiredError indicates a write against a node whose lease has
// lapsed, outside of the re-registration path
type NodeExpiredError struct {
	node nametree.NodeId
}

func NewNodeExpiredError(node nametree.NodeId) NodeExpiredError {
	return NodeExpiredError{node: node}
}

func (e NodeExpiredError) Node() nametree.NodeId {
	return e.node
}

func (e NodeExpiredError) Error() string {
	return fmt.Sprintf(
		"node %s has expired",
		e.node,
	)
}

// CommitmentTooNewError indicates a reveal before the minimum
// commitment age has elapsed
type CommitmentTooNewError struct {
	age    time.Duration
	minAge time.Duration
}

func NewCommitmentTooNewError(
	age time.Duration,
	minAge time.Duration,
) CommitmentTooNewError {
	return CommitmentTooNewError{
		age:    age,
		minAge: minAge,
	}
}

func (e CommitmentTooNewError) Age() time.Duration {
	return e.age
}

func (e CommitmentTooNewError) Error() string {
	return fmt.Sprintf(
		"commitment is too new: age %s is less than minimum %s",
		e.age,
		e.minAge,
	)
}

// ExpirationNotExtendedError indicates an attempt to move a node's
// expiration backwards
type ExpirationNotExtendedError struct {
	current   time.Time
	requested time.Time
}

func NewExpirationNotExtendedError(
	current time.Time,
	requested time.Time,
) ExpirationNotExtendedError {
	return ExpirationNotExtendedError{
		current:   current,
		requested: requested,
	}
}

func (e ExpirationNotExtendedError) Error() string {
	return fmt.Sprintf(
		"expiration can only be extended: requested %s is before current %s",
		e.requested.UTC().Format(time.RFC3339),
		e.current.UTC().Format(time.RFC3339),
	)
}
