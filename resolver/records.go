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
	"encoding/json"
)

// Selector is the 4-byte record-type accessor prefix on resolve
// request payloads
type Selector [4]byte

var (
	// SelectorText selects a text record by key
	SelectorText = Selector{0x59, 0xd1, 0xd4, 0x3c}
	// SelectorAddr selects the default address record
	SelectorAddr = Selector{0x3b, 0x3b, 0x57, 0xde}
	// SelectorAddrCoinType selects an address record by coin type
	SelectorAddrCoinType = Selector{0xf1, 0xcb, 0x7e, 0x06}
	// SelectorContentHash selects the content hash record
	SelectorContentHash = Selector{0xbc, 0x1c, 0x58, 0xd1}
)

func (s Selector) Bytes() []byte {
	return s[:]
}

// DefaultCoinType is the coin type SelectorAddr resolves against
const DefaultCoinType = 60

type TextQuery struct {
	Key string `json:"key"`
}

type AddrQuery struct {
	CoinType uint64 `json:"coinType"`
}

// EncodeTextQuery builds a resolve payload selecting a text record
func EncodeTextQuery(key string) []byte {
	// Marshaling a struct of a string cannot fail
	body, _ := json.Marshal(TextQuery{Key: key})
	return append(SelectorText.Bytes(), body...)
}

// EncodeAddrQuery builds a resolve payload selecting the default
// address record
func EncodeAddrQuery() []byte {
	return SelectorAddr.Bytes()
}

// EncodeAddrCoinTypeQuery builds a resolve payload selecting an
// address record for a specific coin type
func EncodeAddrCoinTypeQuery(coinType uint64) []byte {
	body, _ := json.Marshal(AddrQuery{CoinType: coinType})
	return append(SelectorAddrCoinType.Bytes(), body...)
}

// EncodeContentHashQuery builds a resolve payload selecting the
// content hash record
func EncodeContentHashQuery() []byte {
	return SelectorContentHash.Bytes()
}

// SplitSelector separates a resolve payload into its selector and
// body. Payloads shorter than a selector fail loudly.
func SplitSelector(data []byte) (Selector, []byte, error) {
	if len(data) < len(Selector{}) {
		return Selector{}, nil, ErrShortPayload
	}
	var sel Selector
	copy(sel[:], data)
	return sel, data[len(sel):], nil
}
