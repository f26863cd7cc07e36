// Copyright 2025 Google LLC
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

package cfg

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlags_Defaults(t *testing.T) {
	viper.Reset()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	require.NoError(t, BindFlags(fs))
	require.NoError(t, fs.Parse(nil))

	assert.Equal(t, "INFO", viper.GetString("logging.severity"))
	assert.Equal(t, "text", viper.GetString("logging.format"))
	assert.Equal(t, 5000, viper.GetInt("cache.inode-lease-duration-ms"))
	assert.Equal(t, 5000, viper.GetInt("cache.dentry-lease-duration-ms"))
	assert.Equal(t, 5, viper.GetInt("cache.cap-release-delay-secs"))
	assert.False(t, viper.GetBool("metrics.enabled"))
	assert.Equal(t, 9102, viper.GetInt("metrics.prometheus-port"))
}

func TestBindFlags_Overrides(t *testing.T) {
	viper.Reset()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	require.NoError(t, BindFlags(fs))
	require.NoError(t, fs.Parse([]string{
		"--monitors=10.0.0.1:6789,10.0.0.2:6789",
		"--log-severity=DEBUG",
		"--metrics-enabled=true",
	}))

	assert.Equal(t, []string{"10.0.0.1:6789", "10.0.0.2:6789"}, viper.GetStringSlice("monitors"))
	assert.Equal(t, "DEBUG", viper.GetString("logging.severity"))
	assert.True(t, viper.GetBool("metrics.enabled"))
}
