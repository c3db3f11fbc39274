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

package database

const (
	NodeRecordKeyPrefix    = "n"
	ResolverIndexKeyPrefix = "r"
	CommitmentKeyPrefix    = "c"
	ApprovalKeyPrefix      = "a"
)

// NodeRecordKey builds the ledger key for a node record from its
// 32-byte node id
func NodeRecordKey(nodeId []byte) []byte {
	key := []byte(NodeRecordKeyPrefix)
	key = append(key, nodeId...)
	return key
}

// ResolverIndexKey builds the ledger key for the resolver-uniqueness
// index entry of a resolver address
func ResolverIndexKey(resolver []byte) []byte {
	key := []byte(ResolverIndexKeyPrefix)
	key = append(key, resolver...)
	return key
}

// CommitmentKey builds the ledger key for a commit-reveal commitment
// hash
func CommitmentKey(hash []byte) []byte {
	key := []byte(CommitmentKeyPrefix)
	key = append(key, hash...)
	return key
}

// ApprovalKey builds the ledger key for an (node, operator) approval
// relationship
func ApprovalKey(nodeId []byte, operator []byte) []byte {
	key := []byte(ApprovalKeyPrefix)
	key = append(key, nodeId...)
	key = append(key, operator...)
	return key
}
