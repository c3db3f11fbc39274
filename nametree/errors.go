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
	"errors"
	"fmt"
)

var (
	ErrLabelTooLong = errors.New(
		"label exceeds maximum encodable length",
	)
	ErrEmptyLabel = errors.New(
		"name contains an empty label",
	)
	ErrNameTooLong = errors.New(
		"encoded name exceeds maximum length",
	)
)

// MalformedNameError indicates a structurally invalid length-prefixed
// name or identifier. This is the one decoding condition that fails
// loudly instead of degrading to an empty answer.
type MalformedNameError struct {
	reason string
	offset int
}

func NewMalformedNameError(reason string, offset int) MalformedNameError {
	return MalformedNameError{
		reason: reason,
		offset: offset,
	}
}

func (e MalformedNameError) Reason() string {
	return e.reason
}

func (e MalformedNameError) Offset() int {
	return e.offset
}

func (e MalformedNameError) Error() string {
	return fmt.Sprintf(
		"malformed name encoding at offset %d: %s",
		e.offset,
		e.reason,
	)
}

type InvalidIdLengthError struct {
	expected int
	actual   int
}

func NewInvalidIdLengthError(expected, actual int) InvalidIdLengthError {
	return InvalidIdLengthError{
		expected: expected,
		actual:   actual,
	}
}

func (e InvalidIdLengthError) Error() string {
	return fmt.Sprintf(
		"invalid identifier length: expected %d bytes, got %d",
		e.expected,
		e.actual,
	)
}

// NotChainScopedError indicates a coin type without the chain-scoped
// high bit set
type NotChainScopedError struct {
	coinType uint64
}

func NewNotChainScopedError(coinType uint64) NotChainScopedError {
	return NotChainScopedError{coinType: coinType}
}

func (e NotChainScopedError) CoinType() uint64 {
	return e.coinType
}

func (e NotChainScopedError) Error() string {
	return fmt.Sprintf(
		"coin type 0x%x is not a chain-scoped coin type",
		e.coinType,
	)
}

// ChainIdOverflowError indicates a chain id too large to embed in the
// low 31 bits of a coin type
type ChainIdOverflowError struct {
	chainId uint64
}

func NewChainIdOverflowError(chainId uint64) ChainIdOverflowError {
	return ChainIdOverflowError{chainId: chainId}
}

func (e ChainIdOverflowError) ChainId() uint64 {
	return e.chainId
}

func (e ChainIdOverflowError) Error() string {
	return fmt.Sprintf(
		"chain id %d overflows chain-scoped coin type range",
		e.chainId,
	)
}
