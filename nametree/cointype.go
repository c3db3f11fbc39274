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

// ChainScopedCoinTypeFlag marks a coin type as directly addressing a
// chain-scoped address namespace. The low 31 bits carry the chain id.
const ChainScopedCoinTypeFlag = uint64(0x80000000)

// ChainIdToCoinType converts a chain id into its chain-scoped coin
// type. Chain ids that don't fit in the low 31 bits fail with a
// ChainIdOverflowError.
func ChainIdToCoinType(chainId uint64) (uint64, error) {
	if chainId >= ChainScopedCoinTypeFlag {
		return 0, NewChainIdOverflowError(chainId)
	}
	return ChainScopedCoinTypeFlag | chainId, nil
}

// CoinTypeToChainId recovers the chain id from a chain-scoped coin
// type. Coin types without the chain-scoped flag, or with bits set
// above it, fail with a NotChainScopedError.
func CoinTypeToChainId(coinType uint64) (uint64, error) {
	if coinType&ChainScopedCoinTypeFlag == 0 {
		return 0, NewNotChainScopedError(coinType)
	}
	chainId := coinType &^ ChainScopedCoinTypeFlag
	if chainId >= ChainScopedCoinTypeFlag {
		return 0, NewNotChainScopedError(coinType)
	}
	return chainId, nil
}

// IsChainScopedCoinType reports whether the coin type carries the
// chain-scoped flag and a valid embedded chain id
func IsChainScopedCoinType(coinType uint64) bool {
	_, err := CoinTypeToChainId(coinType)
	return err == nil
}
