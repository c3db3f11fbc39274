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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "beagle.yaml")
	content := []byte(
		"chainId: 9\n" +
			"metricsPort: 9999\n" +
			"rootOwner: \"0x0000000000000000000000000000000000000001\"\n",
	)
	require.NoError(t, os.WriteFile(configFile, content, 0o644))
	cfg, err := LoadConfig(configFile)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), cfg.ChainId)
	assert.Equal(t, uint(9999), cfg.MetricsPort)
	assert.Equal(
		t,
		"0x0000000000000000000000000000000000000001",
		cfg.RootOwner,
	)
	// Defaults survive partial config files
	assert.Equal(t, "0.0.0.0", cfg.BindAddr)
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("BEAGLE_CHAIN_ID", "42")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.ChainId)
}

func TestContextRoundTrip(t *testing.T) {
	cfg := &Config{ChainId: 5}
	ctx := WithContext(t.Context(), cfg)
	assert.Equal(t, cfg, FromContext(ctx))
}
