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

package offchain_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blinklabs-io/beagle/nametree"
	"github.com/blinklabs-io/beagle/offchain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRoundTrip(t *testing.T) {
	name, err := nametree.EncodeName("pay.alice.wallet")
	require.NoError(t, err)
	encoded := offchain.EncodeRequest(name, []byte{0x59, 0xd1, 0xd4, 0x3c})
	decoded, err := offchain.DecodeRequest(encoded)
	require.NoError(t, err)
	assert.Equal(t, name, decoded.Name)
	assert.Equal(t, []byte{0x59, 0xd1, 0xd4, 0x3c}, decoded.Data)
}

func TestHMACVerifier(t *testing.T) {
	v := offchain.NewHMACVerifier([]byte("test secret"))
	extra := []byte("continuation state")
	value := []byte("resolved value")
	proof := v.Sign(extra, value)
	assert.NoError(t, v.Verify(extra, value, proof))
	// Tampered value must fail
	err := v.Verify(extra, []byte("other value"), proof)
	assert.ErrorIs(t, err, offchain.ErrProofInvalid)
	// Tampered continuation state must fail
	err = v.Verify([]byte("other state"), value, proof)
	assert.ErrorIs(t, err, offchain.ErrProofInvalid)
}

func TestClientFetch(t *testing.T) {
	sender, err := nametree.AddressFromHex(
		"0x00000000000000000000000000000000000000aa",
	)
	require.NoError(t, err)
	callData := offchain.EncodeRequest([]byte("name"), []byte("data"))
	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req offchain.GatewayRequest
			require.NoError(
				t,
				json.NewDecoder(r.Body).Decode(&req),
			)
			assert.Equal(t, sender.String(), req.Sender)
			assert.Equal(t, hex.EncodeToString(callData), req.Data)
			resp := offchain.GatewayResponse{
				Data:  []string{hex.EncodeToString([]byte("answer"))},
				Proof: hex.EncodeToString([]byte("proof")),
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		}),
	)
	defer srv.Close()
	client := offchain.NewClient(offchain.ClientConfig{})
	values, proof, err := client.Fetch(
		context.Background(),
		offchain.Lookup{
			Sender:   sender,
			URLs:     []string{srv.URL},
			CallData: callData,
			Callback: offchain.CallbackResolve,
		},
	)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, []byte("answer"), values[0])
	assert.Equal(t, []byte("proof"), proof)
}

func TestClientFetchFallsBack(t *testing.T) {
	bad := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}),
	)
	defer bad.Close()
	good := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := offchain.GatewayResponse{
				Data:  []string{hex.EncodeToString([]byte("ok"))},
				Proof: "",
			}
			_ = json.NewEncoder(w).Encode(resp)
		}),
	)
	defer good.Close()
	client := offchain.NewClient(offchain.ClientConfig{})
	values, _, err := client.Fetch(
		context.Background(),
		offchain.Lookup{
			URLs: []string{bad.URL, good.URL},
		},
	)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, []byte("ok"), values[0])
}

func TestClientFetchAllGatewaysFail(t *testing.T) {
	bad := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}),
	)
	defer bad.Close()
	client := offchain.NewClient(offchain.ClientConfig{})
	_, _, err := client.Fetch(
		context.Background(),
		offchain.Lookup{URLs: []string{bad.URL}},
	)
	require.Error(t, err)
	var gwErr offchain.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusBadGateway, gwErr.Status())
	assert.Equal(t, bad.URL, gwErr.URL())
}

func TestClientFetchNoGateways(t *testing.T) {
	client := offchain.NewClient(offchain.ClientConfig{})
	_, _, err := client.Fetch(context.Background(), offchain.Lookup{})
	assert.ErrorIs(t, err, offchain.ErrNoGateways)
}
