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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type engineMetrics struct {
	queries   prometheus.Counter
	answers   prometheus.Counter
	redirects prometheus.Counter
	cacheHits prometheus.Counter
}

func (e *Engine) registerMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	e.metrics.queries = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "beagle_resolver_queries_total",
			Help: "total resolution queries",
		},
	)
	e.metrics.answers = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "beagle_resolver_answers_total",
			Help: "total synchronously answered queries",
		},
	)
	e.metrics.redirects = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "beagle_resolver_redirects_total",
			Help: "total redirect signals propagated",
		},
	)
	e.metrics.cacheHits = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "beagle_resolver_cache_hits_total",
			Help: "total answer cache hits",
		},
	)
}
