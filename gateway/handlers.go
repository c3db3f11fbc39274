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

package gateway

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/blinklabs-io/beagle/offchain"
	"github.com/blinklabs-io/beagle/resolver"
)

const apiVersion = "0.1.0"

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(
	w http.ResponseWriter,
	status int,
	errStr string,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      errStr,
		Message:    message,
	})
}

// handleRoot handles GET / and returns service metadata
func (g *Gateway) handleRoot(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, RootResponse{
		Service: "beagle-gateway",
		Version: apiVersion,
	})
}

// handleHealth handles GET /health
func (g *Gateway) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Healthy: true,
	})
}

// handleResolve handles POST /resolve: it decodes the forwarded
// resolution request, answers it from the gateway's own resolver, and
// signs the answer over the raw call data so the caller's callback
// can verify the proof against its continuation state
func (g *Gateway) handleResolve(
	w http.ResponseWriter,
	r *http.Request,
) {
	var gwReq offchain.GatewayRequest
	if err := json.NewDecoder(r.Body).Decode(&gwReq); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid request body",
		)
		return
	}
	callData, err := hex.DecodeString(gwReq.Data)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid call data encoding",
		)
		return
	}
	req, err := offchain.DecodeRequest(callData)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid resolution request",
		)
		return
	}
	var value []byte
	switch outcome := g.config.Resolver.Resolve(req.Name, req.Data).(type) {
	case resolver.Answer:
		value = outcome.Value
	case resolver.Empty:
		// An empty answer is still signed: the callback treats it as
		// the no-answer sentinel, not as a failure
		value = []byte{}
	case resolver.Failure:
		g.logger.Error(
			"gateway resolution failed",
			"error", outcome.Err,
		)
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			outcome.Err.Error(),
		)
		return
	default:
		// A gateway cannot redirect again
		writeError(
			w,
			http.StatusInternalServerError,
			"Internal Server Error",
			"gateway resolver returned a non-terminal outcome",
		)
		return
	}
	writeJSON(w, http.StatusOK, offchain.GatewayResponse{
		Data: []string{hex.EncodeToString(value)},
		Proof: hex.EncodeToString(
			g.config.Signer.Sign(callData, value),
		),
	})
}
