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

package nametree_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/blinklabs-io/beagle/nametree"

	"pgregory.net/rapid"
)

func TestRootNodeIsZero(t *testing.T) {
	if !nametree.RootNode.IsZero() {
		t.Fatalf("root node id should be all zeroes")
	}
}

func TestSubnodeIdDeterministic(t *testing.T) {
	a := nametree.SubnodeId(nametree.RootNode, "eth")
	b := nametree.SubnodeId(nametree.RootNode, "eth")
	if a != b {
		t.Fatalf("same parent and label produced different ids: %s != %s", a, b)
	}
	c := nametree.SubnodeId(nametree.RootNode, "com")
	if a == c {
		t.Fatalf("different labels produced the same id")
	}
}

func TestNameIdMatchesManualFold(t *testing.T) {
	eth := nametree.SubnodeId(nametree.RootNode, "eth")
	ecs := nametree.SubnodeId(eth, "ecs")
	label1 := nametree.SubnodeId(ecs, "label1")
	if got := nametree.NameId("label1.ecs.eth"); got != label1 {
		t.Fatalf("NameId mismatch: got %s, want %s", got, label1)
	}
	if got := nametree.NameId(""); got != nametree.RootNode {
		t.Fatalf("empty name should map to root, got %s", got)
	}
}

func TestNameIdPathDependence(t *testing.T) {
	// Same leaf label under different parents must not collide
	a := nametree.NameId("test.eth")
	b := nametree.NameId("test.com")
	if a == b {
		t.Fatalf("distinct paths produced the same node id")
	}
}

func TestEncodeDecodeName(t *testing.T) {
	testDefs := []struct {
		name   string
		labels []string
	}{
		{name: "label1.ecs.eth", labels: []string{"label1", "ecs", "eth"}},
		{name: "eth", labels: []string{"eth"}},
		{name: "", labels: nil},
	}
	for _, testDef := range testDefs {
		encoded, err := nametree.EncodeName(testDef.name)
		if err != nil {
			t.Fatalf("unexpected error encoding %q: %s", testDef.name, err)
		}
		labels, err := nametree.DecodeName(encoded)
		if err != nil {
			t.Fatalf("unexpected error decoding %q: %s", testDef.name, err)
		}
		if len(labels) != len(testDef.labels) {
			t.Fatalf(
				"label count mismatch for %q: got %d, want %d",
				testDef.name,
				len(labels),
				len(testDef.labels),
			)
		}
		for i := range labels {
			if labels[i] != testDef.labels[i] {
				t.Fatalf(
					"label mismatch for %q at %d: got %q, want %q",
					testDef.name,
					i,
					labels[i],
					testDef.labels[i],
				)
			}
		}
	}
}

func TestEncodeNameRejectsEmptyLabel(t *testing.T) {
	if _, err := nametree.EncodeName("foo..eth"); !errors.Is(err, nametree.ErrEmptyLabel) {
		t.Fatalf("expected ErrEmptyLabel, got %v", err)
	}
}

func TestEncodeNameRejectsLongLabel(t *testing.T) {
	label := strings.Repeat("a", 256)
	if _, err := nametree.EncodeName(label + ".eth"); !errors.Is(err, nametree.ErrLabelTooLong) {
		t.Fatalf("expected ErrLabelTooLong, got %v", err)
	}
}

func TestDecodeNameMalformed(t *testing.T) {
	testDefs := []struct {
		description string
		data        []byte
	}{
		{description: "empty input", data: []byte{}},
		{description: "missing terminator", data: []byte{0x03, 'e', 't', 'h'}},
		{description: "truncated label", data: []byte{0x05, 'e', 't', 'h', 0x00}},
		{description: "trailing bytes", data: []byte{0x03, 'e', 't', 'h', 0x00, 0xff}},
	}
	for _, testDef := range testDefs {
		_, err := nametree.DecodeName(testDef.data)
		var malformedErr nametree.MalformedNameError
		if !errors.As(err, &malformedErr) {
			t.Fatalf(
				"%s: expected MalformedNameError, got %v",
				testDef.description,
				err,
			)
		}
	}
}

func TestAddressNameRoundTrip(t *testing.T) {
	addr, err := nametree.AddressFromHex(
		"0x00112233445566778899aabbccddeeff00112233",
	)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	coinType, err := nametree.ChainIdToCoinType(1)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	encoded := nametree.EncodeAddressName(addr, coinType)
	gotAddr, gotCoinType, err := nametree.DecodeAddressName(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if gotAddr != addr {
		t.Fatalf("address mismatch: got %s, want %s", gotAddr, addr)
	}
	if gotCoinType != coinType {
		t.Fatalf("coin type mismatch: got %d, want %d", gotCoinType, coinType)
	}
}

func TestEncodeDecodeNameRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		labelGen := rapid.StringMatching(`[a-z0-9]{1,63}`)
		labels := rapid.SliceOfN(labelGen, 1, 5).Draw(t, "labels")
		name := strings.Join(labels, ".")
		encoded, err := nametree.EncodeName(name)
		if err != nil {
			t.Fatalf("unexpected error encoding %q: %s", name, err)
		}
		decoded, err := nametree.DecodeName(encoded)
		if err != nil {
			t.Fatalf("unexpected error decoding %q: %s", name, err)
		}
		if strings.Join(decoded, ".") != name {
			t.Fatalf("round trip mismatch: %q != %q", decoded, name)
		}
	})
}

func TestCoinTypeRoundTripRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chainId := rapid.Uint64Range(0, 0x7fffffff).Draw(t, "chainId")
		coinType, err := nametree.ChainIdToCoinType(chainId)
		if err != nil {
			t.Fatalf("unexpected error for chain id %d: %s", chainId, err)
		}
		got, err := nametree.CoinTypeToChainId(coinType)
		if err != nil {
			t.Fatalf("unexpected error for coin type %d: %s", coinType, err)
		}
		if got != chainId {
			t.Fatalf("round trip mismatch: got %d, want %d", got, chainId)
		}
	})
}

func TestChainIdToCoinTypeOverflow(t *testing.T) {
	_, err := nametree.ChainIdToCoinType(0x80000000)
	var overflowErr nametree.ChainIdOverflowError
	if !errors.As(err, &overflowErr) {
		t.Fatalf("expected ChainIdOverflowError, got %v", err)
	}
	if overflowErr.ChainId() != 0x80000000 {
		t.Fatalf("unexpected chain id in error: %d", overflowErr.ChainId())
	}
}

func TestCoinTypeToChainIdNotScoped(t *testing.T) {
	testDefs := []uint64{0, 60, 0x7fffffff, 0x100000000}
	for _, coinType := range testDefs {
		_, err := nametree.CoinTypeToChainId(coinType)
		var notScopedErr nametree.NotChainScopedError
		if !errors.As(err, &notScopedErr) {
			t.Fatalf(
				"coin type 0x%x: expected NotChainScopedError, got %v",
				coinType,
				err,
			)
		}
	}
}
