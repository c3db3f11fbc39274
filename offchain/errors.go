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
	"errors"
	"fmt"
)

var (
	ErrNoValues = errors.New(
		"no values provided",
	)
	ErrNoGateways = errors.New(
		"redirect signal carries no gateway endpoints",
	)
	ErrProofInvalid = errors.New(
		"gateway proof verification failed",
	)
)

// GatewayError carries the raw failure from a gateway fetch. The
// failure-callback path re-raises it unchanged, so nothing between
// the gateway and the original caller may wrap or translate it.
type GatewayError struct {
	url    string
	status int
	err    error
}

func NewGatewayError(url string, status int, err error) GatewayError {
	return GatewayError{
		url:    url,
		status: status,
		err:    err,
	}
}

func (e GatewayError) URL() string {
	return e.url
}

func (e GatewayError) Status() int {
	return e.status
}

func (e GatewayError) Unwrap() error {
	return e.err
}

func (e GatewayError) Error() string {
	if e.err != nil {
		return fmt.Sprintf(
			"gateway %s failed: %s",
			e.url,
			e.err,
		)
	}
	return fmt.Sprintf(
		"gateway %s returned status %d",
		e.url,
		e.status,
	)
}
