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
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"time"

	"github.com/blinklabs-io/beagle/database"
	"github.com/blinklabs-io/beagle/nametree"

	badger "github.com/dgraph-io/badger/v4"
)

const (
	// MinCommitmentAge is the delay a commitment must sit before it
	// can be revealed. This window is what blocks an observer from
	// front-running a pending mutation with their own.
	MinCommitmentAge = 60 * time.Second

	// MaxCommitmentAge bounds how long an unrevealed commitment stays
	// usable. A commitment whose secret may have leaked eventually
	// goes stale instead of staying revealable forever.
	MaxCommitmentAge = 24 * time.Hour
)

// CommitmentHash computes the hidden commitment over the full set of
// reveal arguments. Commitments are not owned: any account may commit
// any hash, and only whoever can reproduce these exact arguments at
// reveal time benefits.
func CommitmentHash(
	node nametree.NodeId,
	newOwner nametree.Address,
	newResolver nametree.Address,
	secret [32]byte,
) [32]byte {
	h := sha256.New()
	h.Write(node[:])
	h.Write(newOwner[:])
	h.Write(newResolver[:])
	h.Write(secret[:])
	var ret [32]byte
	copy(ret[:], h.Sum(nil))
	return ret
}

// Commit records a commitment hash. Re-committing an existing hash
// simply refreshes its timestamp.
func (r *Registry) Commit(hash [32]byte) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	submittedAt := r.now().Unix()
	err := r.db.Update(func(txn *badger.Txn) error {
		val := make([]byte, 8)
		binary.BigEndian.PutUint64(val, uint64(submittedAt)) //nolint:gosec
		return txn.Set(database.CommitmentKey(hash[:]), val)
	})
	if err != nil {
		return err
	}
	r.metrics.commits.Inc()
	r.logger.Debug(
		"recorded commitment",
		"component", "registry",
		"hash", hash,
	)
	return nil
}

// checkCommitment validates the commitment for the given reveal hash
// within a transaction and returns its age
func (r *Registry) checkCommitment(
	txn *badger.Txn,
	hash [32]byte,
) error {
	val, err := database.TxGet(txn, database.CommitmentKey(hash[:]))
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return ErrUnknownCommitment
		}
		return err
	}
	if len(val) != 8 {
		return ErrUnknownCommitment
	}
	submittedAt := time.Unix(
		int64(binary.BigEndian.Uint64(val)), //nolint:gosec
		0,
	)
	age := r.now().Sub(submittedAt)
	if age < MinCommitmentAge {
		return NewCommitmentTooNewError(age, MinCommitmentAge)
	}
	if age > MaxCommitmentAge {
		return ErrCommitmentExpired
	}
	return nil
}

// consumeCommitment removes a commitment after a successful reveal so
// it cannot be replayed
func (r *Registry) consumeCommitment(
	txn *badger.Txn,
	hash [32]byte,
) error {
	return txn.Delete(database.CommitmentKey(hash[:]))
}
