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

package event_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/beagle/event"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEventBusSingleSubscriber(t *testing.T) {
	var testEvtData int = 999
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, testEvtData))
	select {
	case evt, ok := <-subCh:
		if !ok {
			t.Fatalf("event channel closed unexpectedly")
		}
		switch v := evt.Data.(type) {
		case int:
			if v != testEvtData {
				t.Fatalf("did not get expected event")
			}
		default:
			t.Fatalf("event data was not of expected type, expected int, got %T", evt.Data)
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for event")
	}
}

func TestEventBusSubscribeFunc(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	var gotEvents atomic.Int64
	eb := event.NewEventBus(nil)
	defer eb.Stop()
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		gotEvents.Add(1)
	})
	for range 3 {
		eb.Publish(testEvtType, event.NewEvent(testEvtType, nil))
	}
	deadline := time.Now().Add(1 * time.Second)
	for gotEvents.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf(
				"timeout waiting for events: got %d, want 3",
				gotEvents.Load(),
			)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEventBusStopDuringBlockedPublish(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil)
	_, subCh := eb.Subscribe(testEvtType)
	// Fill the subscriber buffer so the next publish blocks in the send
	for range event.EventQueueSize {
		eb.Publish(testEvtType, event.NewEvent(testEvtType, nil))
	}
	published := make(chan struct{})
	go func() {
		defer close(published)
		// Must either deliver or drop cleanly, never panic on a
		// channel closed out from under it
		eb.Publish(testEvtType, event.NewEvent(testEvtType, nil))
	}()
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		eb.Stop()
	}()
	// Drain the subscriber so the blocked publish can complete and Stop
	// can close the channel behind it
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for range subCh {
		}
	}()
	for _, ch := range []chan struct{}{published, stopped, drained} {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for stop during blocked publish")
		}
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil)
	defer eb.Stop()
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	if _, ok := <-subCh; ok {
		t.Fatalf("expected closed channel after unsubscribe")
	}
}
