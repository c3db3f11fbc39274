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

package nametree

import (
	"encoding/hex"
	"strconv"
	"strings"
)

const (
	// MaxLabelLength is the largest label that fits in a single length prefix
	MaxLabelLength = 255
	// MaxEncodedNameLength bounds the total wire size of an encoded name
	MaxEncodedNameLength = 1024
)

// EncodeName converts a dot-separated name into its wire form: a
// sequence of length-prefixed labels terminated by a zero-length
// label. The empty name encodes to the bare terminator.
func EncodeName(name string) ([]byte, error) {
	ret := []byte{}
	if name != "" {
		for _, label := range strings.Split(name, ".") {
			if label == "" {
				return nil, ErrEmptyLabel
			}
			if len(label) > MaxLabelLength {
				return nil, ErrLabelTooLong
			}
			ret = append(ret, byte(len(label)))
			ret = append(ret, []byte(label)...)
		}
	}
	ret = append(ret, 0x00)
	if len(ret) > MaxEncodedNameLength {
		return nil, ErrNameTooLong
	}
	return ret, nil
}

// DecodeName converts a wire-form name back into its ordered labels,
// leaf first. Truncated input, a missing terminator, or trailing bytes
// all fail with a MalformedNameError.
func DecodeName(data []byte) ([]string, error) {
	var labels []string
	offset := 0
	for {
		if offset >= len(data) {
			return nil, NewMalformedNameError(
				"missing terminator",
				offset,
			)
		}
		labelLen := int(data[offset])
		offset++
		if labelLen == 0 {
			break
		}
		if offset+labelLen > len(data) {
			return nil, NewMalformedNameError(
				"label length exceeds remaining input",
				offset-1,
			)
		}
		labels = append(
			labels,
			string(data[offset:offset+labelLen]),
		)
		offset += labelLen
	}
	if offset != len(data) {
		return nil, NewMalformedNameError(
			"trailing bytes after terminator",
			offset,
		)
	}
	return labels, nil
}

// NodeIdFromLabels derives the node id for an ordered leaf-first label
// list, starting at the label index given. This is how the resolution
// engine walks a name's ancestors without consulting the registry.
func NodeIdFromLabels(labels []string, skip int) NodeId {
	node := RootNode
	for i := len(labels) - 1; i >= skip; i-- {
		node = SubnodeId(node, labels[i])
	}
	return node
}

// EncodeAddressName builds the synthetic <addr>.<coinType>.addr
// identifier used by address-keyed credential providers. The wire
// shape is identical to a plain encoded name.
func EncodeAddressName(addr Address, coinType uint64) []byte {
	name := hex.EncodeToString(addr.Bytes()) +
		"." + strconv.FormatUint(coinType, 10) +
		".addr"
	// Labels here are always well-formed, so encoding cannot fail
	ret, _ := EncodeName(name)
	return ret
}

// DecodeAddressName parses a synthetic address identifier back into
// its address and coin type components
func DecodeAddressName(data []byte) (Address, uint64, error) {
	labels, err := DecodeName(data)
	if err != nil {
		return Address{}, 0, err
	}
	if len(labels) != 3 || labels[2] != "addr" {
		return Address{}, 0, NewMalformedNameError(
			"not an address identifier",
			0,
		)
	}
	addrBytes, err := hex.DecodeString(labels[0])
	if err != nil {
		return Address{}, 0, NewMalformedNameError(
			"invalid address hex",
			1,
		)
	}
	addr, err := AddressFromBytes(addrBytes)
	if err != nil {
		return Address{}, 0, err
	}
	coinType, err := strconv.ParseUint(labels[1], 10, 64)
	if err != nil {
		return Address{}, 0, NewMalformedNameError(
			"invalid coin type",
			1,
		)
	}
	return addr, coinType, nil
}
