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

package registry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/blinklabs-io/beagle/database"
	"github.com/blinklabs-io/beagle/nametree"
	"github.com/blinklabs-io/beagle/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	rootOwner = mustAddr("0x0000000000000000000000000000000000000001")
	adminAddr = mustAddr("0x0000000000000000000000000000000000000002")
	selfAddr  = mustAddr("0x0000000000000000000000000000000000000003")
	ownerA    = mustAddr("0x00000000000000000000000000000000000000aa")
	ownerB    = mustAddr("0x00000000000000000000000000000000000000bb")
	operator  = mustAddr("0x00000000000000000000000000000000000000cc")
	resolver1 = mustAddr("0x0000000000000000000000000000000000000101")
	resolver2 = mustAddr("0x0000000000000000000000000000000000000102")
)

func mustAddr(s string) nametree.Address {
	addr, err := nametree.AddressFromHex(s)
	if err != nil {
		panic(err)
	}
	return addr
}

type testEnv struct {
	registry *registry.Registry
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	env := &testEnv{
		now: time.Now(),
	}
	reg, err := registry.NewRegistry(registry.RegistryConfig{
		Database:    db,
		RootOwner:   rootOwner,
		SelfAddress: selfAddr,
		Admins:      []nametree.Address{adminAddr},
		Now:         func() time.Time { return env.now },
	})
	require.NoError(t, err)
	env.registry = reg
	return env
}

// registerName registers a single label under the root, owned by the
// given owner
func (env *testEnv) registerName(
	t *testing.T,
	label string,
	owner nametree.Address,
	expiresAt time.Time,
) nametree.NodeId {
	t.Helper()
	id, err := env.registry.SetSubnameOwner(
		rootOwner,
		nametree.RootNode,
		label,
		owner,
		expiresAt,
		false,
	)
	require.NoError(t, err)
	return id
}

// commitAndWait records a commitment and advances the clock past the
// minimum reveal delay
func (env *testEnv) commitAndWait(t *testing.T, hash [32]byte) {
	t.Helper()
	require.NoError(t, env.registry.Commit(hash))
	env.now = env.now.Add(registry.MinCommitmentAge)
}

func TestRootBootstrap(t *testing.T) {
	env := newTestEnv(t)
	owner, err := env.registry.Owner(nametree.RootNode)
	require.NoError(t, err)
	assert.Equal(t, rootOwner, owner)
	expired, err := env.registry.IsExpired(nametree.RootNode)
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestSubnameRegistration(t *testing.T) {
	env := newTestEnv(t)
	expiry := env.now.Add(time.Hour)
	id := env.registerName(t, "eth", ownerA, expiry)
	assert.Equal(t, nametree.NameId("eth"), id)
	owner, err := env.registry.Owner(id)
	require.NoError(t, err)
	assert.Equal(t, ownerA, owner)
	// The owner can freely delegate under itself
	childId, err := env.registry.SetSubnameOwner(
		ownerA,
		id,
		"ecs",
		ownerB,
		expiry,
		false,
	)
	require.NoError(t, err)
	assert.Equal(t, nametree.NameId("ecs.eth"), childId)
	// A stranger cannot
	_, err = env.registry.SetSubnameOwner(
		ownerB,
		id,
		"other",
		ownerB,
		expiry,
		false,
	)
	var authErr registry.NotAuthorizedError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, ownerB, authErr.Actor())
}

func TestOccupiedNodeRejectsReRegistration(t *testing.T) {
	env := newTestEnv(t)
	expiry := env.now.Add(time.Hour)
	id := env.registerName(t, "eth", ownerA, expiry)
	_, err := env.registry.SetSubnameOwner(
		rootOwner,
		nametree.RootNode,
		"eth",
		ownerB,
		expiry.Add(time.Hour),
		false,
	)
	var occupied registry.NodeOccupiedError
	require.True(t, errors.As(err, &occupied))
	assert.Equal(t, id, occupied.Node())
}

func TestReRegistrationAfterExpiry(t *testing.T) {
	env := newTestEnv(t)
	expiry := env.now.Add(time.Hour)
	id, err := env.registry.SetSubnameOwner(
		rootOwner,
		nametree.RootNode,
		"eth",
		ownerA,
		expiry,
		true,
	)
	require.NoError(t, err)
	env.now = expiry.Add(time.Second)
	// Anyone with parent authority can take over an expired node; the
	// protected flag survives the takeover
	_, err = env.registry.SetSubnameOwner(
		rootOwner,
		nametree.RootNode,
		"eth",
		ownerB,
		env.now.Add(time.Hour),
		false,
	)
	require.NoError(t, err)
	record, err := env.registry.NodeRecord(id)
	require.NoError(t, err)
	assert.Equal(t, ownerB, record.Owner)
	assert.True(t, record.Protected)
}

func TestSelfOwnershipGuard(t *testing.T) {
	env := newTestEnv(t)
	expiry := env.now.Add(time.Hour)
	id := env.registerName(t, "eth", selfAddr, expiry)
	owner, err := env.registry.Owner(id)
	require.NoError(t, err)
	assert.Equal(t, nametree.ZeroAddress, owner)
}

func TestCommitRevealTiming(t *testing.T) {
	env := newTestEnv(t)
	expiry := env.now.Add(24 * time.Hour)
	id := env.registerName(t, "eth", ownerA, expiry)
	secret := [32]byte{0x42}
	hash := registry.CommitmentHash(id, ownerB, resolver1, secret)
	require.NoError(t, env.registry.Commit(hash))
	// Too early
	env.now = env.now.Add(registry.MinCommitmentAge - time.Second)
	err := env.registry.SetRecord(ownerA, id, ownerB, resolver1, secret)
	var tooNew registry.CommitmentTooNewError
	require.True(t, errors.As(err, &tooNew))
	// At the minimum age the reveal succeeds
	env.now = env.now.Add(time.Second)
	require.NoError(
		t,
		env.registry.SetRecord(ownerA, id, ownerB, resolver1, secret),
	)
	owner, err := env.registry.Owner(id)
	require.NoError(t, err)
	assert.Equal(t, ownerB, owner)
	res, err := env.registry.Resolver(id)
	require.NoError(t, err)
	assert.Equal(t, resolver1, res)
	// Consumed on success: the same reveal cannot replay
	err = env.registry.SetRecord(ownerB, id, ownerB, resolver1, secret)
	assert.ErrorIs(t, err, registry.ErrUnknownCommitment)
}

func TestCommitRevealUnknownHash(t *testing.T) {
	env := newTestEnv(t)
	expiry := env.now.Add(24 * time.Hour)
	id := env.registerName(t, "eth", ownerA, expiry)
	// Nothing committed at all
	err := env.registry.SetRecord(
		ownerA,
		id,
		ownerB,
		resolver1,
		[32]byte{0x42},
	)
	assert.ErrorIs(t, err, registry.ErrUnknownCommitment)
	// Committed, but revealed with different arguments
	hash := registry.CommitmentHash(id, ownerB, resolver1, [32]byte{0x42})
	env.commitAndWait(t, hash)
	err = env.registry.SetRecord(
		ownerA,
		id,
		ownerB,
		resolver2,
		[32]byte{0x42},
	)
	assert.ErrorIs(t, err, registry.ErrUnknownCommitment)
}

func TestCommitmentMaxAge(t *testing.T) {
	env := newTestEnv(t)
	expiry := env.now.Add(48 * time.Hour)
	id := env.registerName(t, "eth", ownerA, expiry)
	secret := [32]byte{0x42}
	hash := registry.CommitmentHash(id, ownerB, resolver1, secret)
	require.NoError(t, env.registry.Commit(hash))
	env.now = env.now.Add(registry.MaxCommitmentAge + time.Second)
	err := env.registry.SetRecord(ownerA, id, ownerB, resolver1, secret)
	assert.ErrorIs(t, err, registry.ErrCommitmentExpired)
}

func TestRecommitRefreshesTimestamp(t *testing.T) {
	env := newTestEnv(t)
	expiry := env.now.Add(48 * time.Hour)
	id := env.registerName(t, "eth", ownerA, expiry)
	secret := [32]byte{0x42}
	hash := registry.CommitmentHash(id, ownerB, resolver1, secret)
	require.NoError(t, env.registry.Commit(hash))
	env.now = env.now.Add(registry.MinCommitmentAge)
	// Re-commit restarts the clock
	require.NoError(t, env.registry.Commit(hash))
	err := env.registry.SetRecord(ownerA, id, ownerB, resolver1, secret)
	var tooNew registry.CommitmentTooNewError
	assert.True(t, errors.As(err, &tooNew))
}

func TestResolverUniqueness(t *testing.T) {
	env := newTestEnv(t)
	expiry := env.now.Add(24 * time.Hour)
	id1 := env.registerName(t, "one", ownerA, expiry)
	id2 := env.registerName(t, "two", ownerA, expiry)
	require.NoError(
		t,
		env.registry.SetNodeResolver(ownerA, id1, resolver1),
	)
	// The same resolver cannot be bound to a second active node
	err := env.registry.SetNodeResolver(ownerA, id2, resolver1)
	var inUse registry.ResolverInUseError
	require.True(t, errors.As(err, &inUse))
	assert.Equal(t, resolver1, inUse.Resolver())
	assert.Equal(t, id1, inUse.Node())
	// Reverse index matches
	bound, err := env.registry.NodeByResolver(resolver1)
	require.NoError(t, err)
	assert.Equal(t, id1, bound)
	// Clearing the first binding frees the resolver
	require.NoError(
		t,
		env.registry.SetNodeResolver(ownerA, id1, nametree.ZeroAddress),
	)
	require.NoError(
		t,
		env.registry.SetNodeResolver(ownerA, id2, resolver1),
	)
}

func TestResolverReassignmentFromExpiredNode(t *testing.T) {
	env := newTestEnv(t)
	shortExpiry := env.now.Add(time.Hour)
	longExpiry := env.now.Add(48 * time.Hour)
	id1 := env.registerName(t, "one", ownerA, shortExpiry)
	id2 := env.registerName(t, "two", ownerA, longExpiry)
	require.NoError(
		t,
		env.registry.SetNodeResolver(ownerA, id1, resolver1),
	)
	env.now = shortExpiry.Add(time.Second)
	// The previous binding has lapsed, so reassignment clears it
	require.NoError(
		t,
		env.registry.SetNodeResolver(ownerA, id2, resolver1),
	)
	res, err := env.registry.Resolver(id1)
	require.NoError(t, err)
	assert.Equal(t, nametree.ZeroAddress, res)
	bound, err := env.registry.NodeByResolver(resolver1)
	require.NoError(t, err)
	assert.Equal(t, id2, bound)
}

func TestExpiredNodeRejectsResolverWrite(t *testing.T) {
	env := newTestEnv(t)
	expiry := env.now.Add(time.Hour)
	id := env.registerName(t, "eth", ownerA, expiry)
	env.now = expiry.Add(time.Second)
	err := env.registry.SetNodeResolver(ownerA, id, resolver1)
	var expErr registry.NodeExpiredError
	require.True(t, errors.As(err, &expErr))
	assert.Equal(t, id, expErr.Node())
}

func TestApprovalInvalidationOnTransfer(t *testing.T) {
	env := newTestEnv(t)
	expiry := env.now.Add(24 * time.Hour)
	id := env.registerName(t, "eth", ownerA, expiry)
	// Only the current owner may grant approvals
	err := env.registry.SetApproval(ownerB, id, operator, true)
	var authErr registry.NotAuthorizedError
	require.True(t, errors.As(err, &authErr))
	require.NoError(
		t,
		env.registry.SetApproval(ownerA, id, operator, true),
	)
	// The operator can now mutate the node
	require.NoError(
		t,
		env.registry.SetNodeResolver(operator, id, resolver1),
	)
	// Ownership transfer silently invalidates the approval even
	// though the stored grant was never cleared
	require.NoError(t, env.registry.SetOwner(ownerA, id, ownerB))
	err = env.registry.SetNodeResolver(operator, id, resolver2)
	require.True(t, errors.As(err, &authErr))
	// A fresh grant from the new owner re-authorizes
	require.NoError(
		t,
		env.registry.SetApproval(ownerB, id, operator, true),
	)
	require.NoError(
		t,
		env.registry.SetNodeResolver(operator, id, resolver2),
	)
}

func TestApprovalRevocation(t *testing.T) {
	env := newTestEnv(t)
	expiry := env.now.Add(24 * time.Hour)
	id := env.registerName(t, "eth", ownerA, expiry)
	require.NoError(
		t,
		env.registry.SetApproval(ownerA, id, operator, true),
	)
	require.NoError(
		t,
		env.registry.SetApproval(ownerA, id, operator, false),
	)
	err := env.registry.SetNodeResolver(operator, id, resolver1)
	var authErr registry.NotAuthorizedError
	assert.True(t, errors.As(err, &authErr))
}

func TestExpirationMonotonicity(t *testing.T) {
	env := newTestEnv(t)
	expiry := env.now.Add(time.Hour)
	id := env.registerName(t, "eth", ownerA, expiry)
	// Only admins may extend
	err := env.registry.SetExpiration(ownerA, id, expiry.Add(time.Hour))
	var authErr registry.NotAuthorizedError
	require.True(t, errors.As(err, &authErr))
	// Moving backwards fails
	err = env.registry.SetExpiration(adminAddr, id, expiry.Add(-time.Minute))
	var notExtended registry.ExpirationNotExtendedError
	require.True(t, errors.As(err, &notExtended))
	// Extension succeeds
	newExpiry := expiry.Add(time.Hour)
	require.NoError(
		t,
		env.registry.SetExpiration(adminAddr, id, newExpiry),
	)
	record, err := env.registry.NodeRecord(id)
	require.NoError(t, err)
	assert.Equal(t, newExpiry.Unix(), record.ExpiresAt)
}

func TestOwnerTransferIgnoresExpiry(t *testing.T) {
	env := newTestEnv(t)
	expiry := env.now.Add(time.Hour)
	id := env.registerName(t, "eth", ownerA, expiry)
	env.now = expiry.Add(time.Hour)
	// Existing owners can always transfer, expired or not
	require.NoError(t, env.registry.SetOwner(ownerA, id, ownerB))
	record, err := env.registry.NodeRecord(id)
	require.NoError(t, err)
	assert.Equal(t, ownerB, record.Owner)
}

func TestMissingNodeIsExpired(t *testing.T) {
	env := newTestEnv(t)
	expired, err := env.registry.IsExpired(nametree.NameId("nobody"))
	require.NoError(t, err)
	assert.True(t, expired)
	exists, err := env.registry.RecordExists(nametree.NameId("nobody"))
	require.NoError(t, err)
	assert.False(t, exists)
}
