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

package nametree

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NodeIdSize is the size of a node identifier in bytes
const NodeIdSize = 32

// AddressSize is the size of an account or resolver address in bytes
const AddressSize = 20

// NodeId uniquely identifies a node in the name tree. It is derived
// purely from the node's path, so two parties deriving the id for the
// same name always agree without consulting any shared state.
type NodeId [NodeIdSize]byte

// RootNode is the identifier of the name tree root. Its parent is
// defined as the zero id, which makes the root id itself all zeroes.
var RootNode = NodeId{}

func (n NodeId) String() string {
	return hex.EncodeToString(n[:])
}

func (n NodeId) Bytes() []byte {
	return n[:]
}

// IsZero returns true for the root/unset node id
func (n NodeId) IsZero() bool {
	return n == NodeId{}
}

// NodeIdFromBytes converts a raw 32-byte slice into a NodeId
func NodeIdFromBytes(data []byte) (NodeId, error) {
	var ret NodeId
	if len(data) != NodeIdSize {
		return ret, NewInvalidIdLengthError(NodeIdSize, len(data))
	}
	copy(ret[:], data)
	return ret, nil
}

// Address identifies an account or an attached resolver
type Address [AddressSize]byte

// ZeroAddress is the "unset" sentinel for owners and resolvers
var ZeroAddress = Address{}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

// IsZero returns true for the unset address
func (a Address) IsZero() bool {
	return a == Address{}
}

// AddressFromBytes converts a raw 20-byte slice into an Address
func AddressFromBytes(data []byte) (Address, error) {
	var ret Address
	if len(data) != AddressSize {
		return ret, NewInvalidIdLengthError(AddressSize, len(data))
	}
	copy(ret[:], data)
	return ret, nil
}

// AddressFromHex parses an address from a hex string with optional 0x prefix
func AddressFromHex(s string) (Address, error) {
	s = strings.TrimPrefix(s, "0x")
	data, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, err
	}
	return AddressFromBytes(data)
}

// LabelHash returns the hash of a single label
func LabelHash(label string) [32]byte {
	return sha256.Sum256([]byte(label))
}

// SubnodeId derives the id of a child node from its parent id and
// label. This is the only way node identities are ever created, which
// guarantees that an id is a pure function of the node's path.
func SubnodeId(parent NodeId, label string) NodeId {
	labelHash := LabelHash(label)
	h := sha256.New()
	h.Write(parent[:])
	h.Write(labelHash[:])
	var ret NodeId
	copy(ret[:], h.Sum(nil))
	return ret
}

// NameId derives the node id for a full dot-separated name by folding
// its labels from the root down. The empty name maps to the root node.
func NameId(name string) NodeId {
	if name == "" {
		return RootNode
	}
	labels := strings.Split(name, ".")
	node := RootNode
	for i := len(labels) - 1; i >= 0; i-- {
		node = SubnodeId(node, labels[i])
	}
	return node
}
