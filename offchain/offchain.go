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

// Package offchain implements the redirect protocol used when a
// dispatched resolver cannot answer a credential query synchronously.
// The resolver emits a Lookup signal instead of a value; every layer
// between it and the original caller must propagate that signal
// verbatim. The caller's client then visits the gateway endpoints,
// obtains a value and proof, and feeds both to the callback entry
// point, which independently re-validates everything.
package offchain

import (
	"encoding/json"

	"github.com/blinklabs-io/beagle/nametree"
)

// CallbackSelector identifies the callback entry point a gateway
// response must be fed to
type CallbackSelector [4]byte

// CallbackResolve is the standard success-callback selector
var CallbackResolve = CallbackSelector{0x90, 0x61, 0xb9, 0x23}

// Lookup is the structured redirect signal. From the core's
// perspective it is a terminal response for the invocation: the
// "resumption" is a brand-new callback invocation that can assume
// nothing beyond what Extra carries.
type Lookup struct {
	// Sender identifies the resolver that raised the redirect
	Sender nametree.Address `json:"sender"`
	// URLs lists gateway endpoints to try in order
	URLs []string `json:"urls"`
	// CallData is the request payload for the gateway
	CallData []byte `json:"callData"`
	// Callback selects the callback entry point
	Callback CallbackSelector `json:"callback"`
	// Extra is the continuation state threaded through to the
	// callback unmodified
	Extra []byte `json:"extra"`
}

// Request is the resolution request carried in Lookup.CallData and
// Lookup.Extra: enough for the gateway to answer and for the callback
// to re-validate
type Request struct {
	Name []byte `json:"name"`
	Data []byte `json:"data"`
}

func EncodeRequest(name []byte, data []byte) []byte {
	// Marshaling a struct of byte slices cannot fail
	ret, _ := json.Marshal(Request{Name: name, Data: data})
	return ret
}

func DecodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, err
	}
	return req, nil
}
