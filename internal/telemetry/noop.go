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

package telemetry

import (
	"context"
	"time"
)

// NoopMetrics discards every measurement. Used when cfg.Config disables
// telemetry, and as the default in tests that don't care about metrics.
type NoopMetrics struct{}

var _ MetricHandle = NoopMetrics{}

func (NoopMetrics) OpsCount(context.Context, string, int64)               {}
func (NoopMetrics) OpsLatency(context.Context, string, time.Duration)     {}
func (NoopMetrics) OpsErrorCount(context.Context, string, string, int64)  {}
func (NoopMetrics) CacheHitCount(context.Context, string, bool, int64)    {}
