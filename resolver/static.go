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

package resolver

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/blinklabs-io/beagle/nametree"
	"github.com/blinklabs-io/beagle/offchain"
)

// CredentialResolver answers resolve requests for names under the
// node it is attached to. Implementations may answer synchronously or
// signal a redirect; the engine passes whatever they return back to
// the caller unmodified.
type CredentialResolver interface {
	Resolve(name []byte, data []byte) Outcome
}

// StaticResolver is an in-process credential resolver backed by plain
// maps. It answers text, address, and content hash queries from
// records set directly on it.
type StaticResolver struct {
	text        map[nametree.NodeId]map[string][]string
	addr        map[nametree.NodeId]map[uint64]string
	contentHash map[nametree.NodeId][]byte
	mutex       sync.RWMutex
}

func NewStaticResolver() *StaticResolver {
	return &StaticResolver{
		text:        make(map[nametree.NodeId]map[string][]string),
		addr:        make(map[nametree.NodeId]map[uint64]string),
		contentHash: make(map[nametree.NodeId][]byte),
	}
}

// SetText records text values for a name and key. Multi-valued
// answers come back newline-joined.
func (s *StaticResolver) SetText(
	id nametree.NodeId,
	key string,
	values ...string,
) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.text[id] == nil {
		s.text[id] = make(map[string][]string)
	}
	s.text[id][key] = values
}

func (s *StaticResolver) SetAddr(
	id nametree.NodeId,
	coinType uint64,
	addr string,
) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.addr[id] == nil {
		s.addr[id] = make(map[uint64]string)
	}
	s.addr[id][coinType] = addr
}

func (s *StaticResolver) SetContentHash(
	id nametree.NodeId,
	hash []byte,
) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.contentHash[id] = hash
}

func (s *StaticResolver) Resolve(name []byte, data []byte) Outcome {
	labels, err := nametree.DecodeName(name)
	if err != nil {
		return Failure{Err: err}
	}
	id := nametree.NodeIdFromLabels(labels, 0)
	sel, body, err := SplitSelector(data)
	if err != nil {
		return Failure{Err: err}
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	switch sel {
	case SelectorText:
		var query TextQuery
		if err := json.Unmarshal(body, &query); err != nil {
			return Failure{Err: err}
		}
		values, ok := s.text[id][query.Key]
		if !ok || len(values) == 0 {
			return Empty{}
		}
		return Answer{Value: []byte(strings.Join(values, "\n"))}
	case SelectorAddr:
		addr, ok := s.addr[id][DefaultCoinType]
		if !ok {
			return Empty{}
		}
		return Answer{Value: []byte(addr)}
	case SelectorAddrCoinType:
		var query AddrQuery
		if err := json.Unmarshal(body, &query); err != nil {
			return Failure{Err: err}
		}
		addr, ok := s.addr[id][query.CoinType]
		if !ok {
			return Empty{}
		}
		return Answer{Value: []byte(addr)}
	case SelectorContentHash:
		hash, ok := s.contentHash[id]
		if !ok {
			return Empty{}
		}
		return Answer{Value: hash}
	default:
		return Failure{Err: NewUnsupportedSelectorError(sel)}
	}
}

// RedirectResolver signals an off-ledger redirect for every request.
// The gateway behind its endpoints holds the actual records; the
// request payload is carried in both CallData and Extra so the
// callback can re-validate without any shared in-process state.
type RedirectResolver struct {
	sender nametree.Address
	urls   []string
}

func NewRedirectResolver(
	sender nametree.Address,
	urls []string,
) *RedirectResolver {
	return &RedirectResolver{
		sender: sender,
		urls:   urls,
	}
}

func (r *RedirectResolver) Resolve(name []byte, data []byte) Outcome {
	if _, err := nametree.DecodeName(name); err != nil {
		return Failure{Err: err}
	}
	request := offchain.EncodeRequest(name, data)
	return Redirect{
		Lookup: offchain.Lookup{
			Sender:   r.sender,
			URLs:     r.urls,
			CallData: request,
			Callback: offchain.CallbackResolve,
			Extra:    request,
		},
	}
}
