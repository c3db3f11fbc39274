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
	"time"

	"github.com/blinklabs-io/beagle/event"
	"github.com/blinklabs-io/beagle/nametree"
)

const (
	RegistrationEventType   event.EventType = "registry.registration"
	OwnerChangeEventType    event.EventType = "registry.new_owner"
	ResolverChangeEventType event.EventType = "registry.new_resolver"
	ApprovalEventType       event.EventType = "registry.approval"
	ExpirationEventType     event.EventType = "registry.expiration"
)

// RegistrationEvent is published when a subname is created or
// re-registered after expiry
type RegistrationEvent struct {
	NodeId    nametree.NodeId
	ParentId  nametree.NodeId
	Label     string
	Owner     nametree.Address
	ExpiresAt time.Time
	Protected bool
}

type OwnerChangeEvent struct {
	NodeId nametree.NodeId
	Owner  nametree.Address
}

type ResolverChangeEvent struct {
	NodeId   nametree.NodeId
	Resolver nametree.Address
}

type ApprovalEvent struct {
	NodeId   nametree.NodeId
	Operator nametree.Address
	Approved bool
}

type ExpirationEvent struct {
	NodeId    nametree.NodeId
	ExpiresAt time.Time
}
