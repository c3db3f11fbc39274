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

package offchain

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultFetchTimeout = 10 * time.Second

// GatewayRequest is the JSON body POSTed to each gateway endpoint
type GatewayRequest struct {
	Sender string `json:"sender"`
	Data   string `json:"data"`
}

// GatewayResponse is the JSON body a gateway answers with
type GatewayResponse struct {
	Data  []string `json:"data"`
	Proof string   `json:"proof"`
}

type ClientConfig struct {
	Logger *slog.Logger
	// Timeout bounds each individual gateway fetch
	Timeout time.Duration
}

// Client performs the external half of a redirect: it visits the
// gateway endpoints in order and returns the first successful
// response's values and proof. Giving up entirely is the client's
// prerogative; the core has no redirect timeout of its own.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultFetchTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Fetch visits the lookup's gateway endpoints in order and returns
// the values and proof from the first endpoint that answers. The last
// gateway failure is returned raw so the failure-callback path can
// re-raise it unchanged.
func (c *Client) Fetch(
	ctx context.Context,
	lookup Lookup,
) ([][]byte, []byte, error) {
	if len(lookup.URLs) == 0 {
		return nil, nil, ErrNoGateways
	}
	reqBody, err := json.Marshal(GatewayRequest{
		Sender: lookup.Sender.String(),
		Data:   hex.EncodeToString(lookup.CallData),
	})
	if err != nil {
		return nil, nil, err
	}
	var lastErr error
	for _, url := range lookup.URLs {
		values, proof, err := c.fetchOne(ctx, url, reqBody)
		if err != nil {
			c.logger.Warn(
				"gateway fetch failed",
				"component", "offchain",
				"url", url,
				"error", err,
			)
			lastErr = err
			continue
		}
		return values, proof, nil
	}
	return nil, nil, lastErr
}

func (c *Client) fetchOne(
	ctx context.Context,
	url string,
	reqBody []byte,
) ([][]byte, []byte, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		bytes.NewReader(reqBody),
	)
	if err != nil {
		return nil, nil, NewGatewayError(url, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, NewGatewayError(url, 0, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, NewGatewayError(url, resp.StatusCode, nil)
	}
	var gwResp GatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gwResp); err != nil {
		return nil, nil, NewGatewayError(
			url,
			resp.StatusCode,
			fmt.Errorf("invalid gateway response: %w", err),
		)
	}
	values := make([][]byte, 0, len(gwResp.Data))
	for _, item := range gwResp.Data {
		value, err := hex.DecodeString(item)
		if err != nil {
			return nil, nil, NewGatewayError(
				url,
				resp.StatusCode,
				fmt.Errorf("invalid gateway value encoding: %w", err),
			)
		}
		values = append(values, value)
	}
	proof, err := hex.DecodeString(gwResp.Proof)
	if err != nil {
		return nil, nil, NewGatewayError(
			url,
			resp.StatusCode,
			fmt.Errorf("invalid gateway proof encoding: %w", err),
		)
	}
	return values, proof, nil
}
