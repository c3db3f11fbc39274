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
	"github.com/blinklabs-io/beagle/offchain"
)

// Outcome is the result of a resolution attempt. Exactly one of the
// concrete types below is returned, and callers compose the dispatch
// chain by type switch rather than by error inspection.
type Outcome interface {
	isOutcome()
}

// Answer carries a successfully resolved value
type Answer struct {
	Value []byte
}

// Empty is the canonical no-answer result. It is not a failure: an
// unregistered name, a missing record, and an expired namespace all
// resolve to Empty.
type Empty struct{}

// Redirect propagates a resolver's off-ledger lookup signal. Every
// layer between the resolver and the original caller passes it through
// verbatim.
type Redirect struct {
	Lookup offchain.Lookup
}

// Failure carries a hard error from the resolution path. The payload
// is preserved as-is so the redirect failure branch can re-raise the
// original error unchanged.
type Failure struct {
	Err error
}

func (Answer) isOutcome()   {}
func (Empty) isOutcome()    {}
func (Redirect) isOutcome() {}
func (Failure) isOutcome()  {}
