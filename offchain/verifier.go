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

package offchain

import (
	"crypto/hmac"
	"crypto/sha256"
)

// Verifier validates a gateway proof against the continuation state
// and the returned value. The trust boundary is external to the core:
// what constitutes a valid proof is entirely the verifier's business.
type Verifier interface {
	Verify(extra []byte, value []byte, proof []byte) error
}

// Signer produces the proof a gateway attaches to its responses
type Signer interface {
	Sign(extra []byte, value []byte) []byte
}

// HMACVerifier signs and verifies gateway responses with a shared
// secret. Both sides of the gateway boundary hold the key.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret []byte) *HMACVerifier {
	return &HMACVerifier{secret: secret}
}

func (v *HMACVerifier) Sign(extra []byte, value []byte) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(extra)
	mac.Write(value)
	return mac.Sum(nil)
}

func (v *HMACVerifier) Verify(extra []byte, value []byte, proof []byte) error {
	expected := v.Sign(extra, value)
	if !hmac.Equal(expected, proof) {
		return ErrProofInvalid
	}
	return nil
}
