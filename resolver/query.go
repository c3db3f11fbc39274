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
	"strconv"
	"strings"

	"github.com/blinklabs-io/beagle/nametree"
)

// DefaultGroup is the group a query resolves against when the key
// carries no group suffix
const DefaultGroup = "default"

// QueryKey is a parsed credential query key. The wire grammar is
// "baseKey[:chainScope][:group]": a missing chain scope means the
// current chain, a missing group means the default group.
type QueryKey struct {
	Base     string
	CoinType uint64
	Group    string
}

// ParseQueryKey parses a credential query key against the current
// chain id. Parsing is deliberately permissive: an empty chain scope
// ("key::group") and a non-numeric or out-of-range chain scope both
// fall back to the current chain, never to an error.
func ParseQueryKey(key string, currentChainId uint64) QueryKey {
	parts := strings.SplitN(key, ":", 3)
	ret := QueryKey{
		Base:  parts[0],
		Group: DefaultGroup,
	}
	// Out-of-range current chain ids cannot occur on a configured
	// chain, so the conversion error is ignored
	ret.CoinType, _ = nametree.ChainIdToCoinType(currentChainId)
	if len(parts) > 1 {
		chainId, err := strconv.ParseUint(parts[1], 10, 64)
		if err == nil {
			if coinType, err := nametree.ChainIdToCoinType(chainId); err == nil {
				ret.CoinType = coinType
			}
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		ret.Group = parts[2]
	}
	return ret
}

// String renders the canonical form of the key, with both suffixes
// always present. Providers index their records by this form.
func (q QueryKey) String() string {
	return q.Base +
		":" + strconv.FormatUint(q.CoinType, 10) +
		":" + q.Group
}
