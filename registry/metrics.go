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

package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) registerMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	r.metrics.registrations = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "beagle_registry_registrations_total",
			Help: "total subname registrations",
		},
	)
	r.metrics.transfers = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "beagle_registry_transfers_total",
			Help: "total node ownership transfers",
		},
	)
	r.metrics.commits = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "beagle_registry_commits_total",
			Help: "total commitments recorded",
		},
	)
	r.metrics.reveals = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "beagle_registry_reveals_total",
			Help: "total successful commit-reveal mutations",
		},
	)
}
