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
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/blinklabs-io/beagle/nametree"

	"github.com/patrickmn/go-cache"
)

const (
	defaultCacheTTL    = time.Minute
	cacheCleanupFactor = 2
)

// answerCache holds synchronously resolved answers keyed by the
// request. Any registry mutation flushes it wholesale; per-node
// invalidation isn't worth the bookkeeping at this cache's TTL.
// Lease expiry is pure passage of time and publishes no event, so
// every entry carries the matched node id and the engine re-checks
// that node's lease on each hit.
type answerCache struct {
	cache *cache.Cache
}

// cacheEntry is a cached answer together with the node the walk
// matched to produce it
type cacheEntry struct {
	value []byte
	node  nametree.NodeId
}

func newAnswerCache(ttl time.Duration) *answerCache {
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	return &answerCache{
		cache: cache.New(ttl, cacheCleanupFactor*ttl),
	}
}

func cacheKey(name []byte, data []byte) string {
	sum := sha256.New()
	sum.Write(name)
	sum.Write(data)
	return hex.EncodeToString(sum.Sum(nil))
}

func (c *answerCache) get(name []byte, data []byte) (cacheEntry, bool) {
	val, ok := c.cache.Get(cacheKey(name, data))
	if !ok {
		return cacheEntry{}, false
	}
	return val.(cacheEntry), true
}

func (c *answerCache) set(
	name []byte,
	data []byte,
	value []byte,
	node nametree.NodeId,
) {
	c.cache.SetDefault(
		cacheKey(name, data),
		cacheEntry{value: value, node: node},
	)
}

func (c *answerCache) delete(name []byte, data []byte) {
	c.cache.Delete(cacheKey(name, data))
}

func (c *answerCache) flush() {
	c.cache.Flush()
}
