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
	"errors"
	"fmt"

	"github.com/blinklabs-io/beagle/nametree"
)

var (
	ErrShortPayload = errors.New(
		"resolve payload shorter than a selector",
	)
	ErrNoOffchainClient = errors.New(
		"redirect received but no offchain client is configured",
	)
)

// UnsupportedSelectorError reports an unrecognized record-type
// accessor, echoing the selector that was requested
type UnsupportedSelectorError struct {
	selector Selector
}

func NewUnsupportedSelectorError(selector Selector) UnsupportedSelectorError {
	return UnsupportedSelectorError{selector: selector}
}

func (e UnsupportedSelectorError) Selector() Selector {
	return e.selector
}

func (e UnsupportedSelectorError) Error() string {
	return fmt.Sprintf(
		"unsupported resolve selector 0x%x",
		e.selector.Bytes(),
	)
}

// ResolverNotBoundError reports a resolver address attached in the
// registry that has no in-process implementation bound to it
type ResolverNotBoundError struct {
	resolver nametree.Address
}

func NewResolverNotBoundError(
	resolver nametree.Address,
) ResolverNotBoundError {
	return ResolverNotBoundError{resolver: resolver}
}

func (e ResolverNotBoundError) Resolver() nametree.Address {
	return e.resolver
}

func (e ResolverNotBoundError) Error() string {
	return fmt.Sprintf(
		"no credential resolver bound for address %s",
		e.resolver,
	)
}
