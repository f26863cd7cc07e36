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
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	opKey  = "op"
	hitKey = "cache_hit"
	errKey = "error_kind"
)

var defaultLatencyDistribution = metric.WithExplicitBucketBoundaries(
	1, 2, 3, 4, 5, 6, 8, 10, 13, 16, 20, 25, 30, 40, 50, 65, 80, 100, 130, 160,
	200, 250, 300, 400, 500, 650, 800, 1000, 2000, 5000, 10000,
)

func loadOrStoreAttrSet(m *sync.Map, key string, mk func() attribute.Set) metric.MeasurementOption {
	if v, ok := m.Load(key); ok {
		return v.(metric.MeasurementOption)
	}
	v, _ := m.LoadOrStore(key, metric.WithAttributeSet(mk()))
	return v.(metric.MeasurementOption)
}

// otelMetrics is the production MetricHandle, grounded on the teacher's
// common/otel_metrics.go attribute-caching pattern.
type otelMetrics struct {
	opsCount      metric.Int64Counter
	opsErrorCount metric.Int64Counter
	opsLatency    metric.Float64Histogram
	cacheHitCount metric.Int64Counter

	opAttrSets    sync.Map
	hitAttrSets   sync.Map
	errorAttrSets sync.Map
}

var _ MetricHandle = (*otelMetrics)(nil)

// NewOTelMetrics builds the cache core's metric instruments against the
// globally registered OTel meter provider.
func NewOTelMetrics() (MetricHandle, error) {
	cacheMeter := otel.Meter("cephfs_cache")
	opsCount, err1 := cacheMeter.Int64Counter("cache/ops_count",
		metric.WithDescription("Operations processed by the metadata cache core."))
	opsLatency, err2 := cacheMeter.Float64Histogram("cache/ops_latency",
		metric.WithDescription("Latency of metadata cache operations."),
		metric.WithUnit("us"), defaultLatencyDistribution)
	opsErrorCount, err3 := cacheMeter.Int64Counter("cache/ops_error_count",
		metric.WithDescription("Errors surfaced by metadata cache operations, by error kind."))
	cacheHitCount, err4 := cacheMeter.Int64Counter("cache/hit_count",
		metric.WithDescription("Whether a lease/cap check was satisfied locally or required the MDS."))

	if err := errors.Join(err1, err2, err3, err4); err != nil {
		return nil, err
	}

	return &otelMetrics{
		opsCount:      opsCount,
		opsLatency:    opsLatency,
		opsErrorCount: opsErrorCount,
		cacheHitCount: cacheHitCount,
	}, nil
}

func (o *otelMetrics) opAttr(op string) metric.MeasurementOption {
	return loadOrStoreAttrSet(&o.opAttrSets, op, func() attribute.Set {
		return attribute.NewSet(attribute.String(opKey, op))
	})
}

func (o *otelMetrics) hitAttr(op string, hit bool) metric.MeasurementOption {
	key := op + "|" + boolString(hit)
	return loadOrStoreAttrSet(&o.hitAttrSets, key, func() attribute.Set {
		return attribute.NewSet(attribute.String(opKey, op), attribute.Bool(hitKey, hit))
	})
}

func (o *otelMetrics) errAttr(op, kind string) metric.MeasurementOption {
	key := op + "|" + kind
	return loadOrStoreAttrSet(&o.errorAttrSets, key, func() attribute.Set {
		return attribute.NewSet(attribute.String(opKey, op), attribute.String(errKey, kind))
	})
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (o *otelMetrics) OpsCount(ctx context.Context, op string, inc int64) {
	o.opsCount.Add(ctx, inc, o.opAttr(op))
}

func (o *otelMetrics) OpsLatency(ctx context.Context, op string, d time.Duration) {
	o.opsLatency.Record(ctx, float64(d.Microseconds()), o.opAttr(op))
}

func (o *otelMetrics) OpsErrorCount(ctx context.Context, op string, errKind string, inc int64) {
	o.opsErrorCount.Add(ctx, inc, o.errAttr(op, errKind))
}

func (o *otelMetrics) CacheHitCount(ctx context.Context, op string, hit bool, inc int64) {
	o.cacheHitCount.Add(ctx, inc, o.hitAttr(op, hit))
}
