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
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// ShutdownFunc stops a telemetry pipeline that was started by one of the
// setup functions below.
type ShutdownFunc func() error

// SetupPrometheusExporter wires the OTel metric SDK to a Prometheus
// collector and returns an http.Handler exposing /metrics, grounded on the
// teacher's dual otel+prometheus exposition (go.mod pulls in both
// go.opentelemetry.io/otel/exporters/prometheus and
// prometheus/client_golang for the same reason here).
func SetupPrometheusExporter() (MetricHandle, http.Handler, ShutdownFunc, error) {
	exporter, err := otelprom.New()
	if err != nil {
		return nil, nil, nil, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	handle, err := NewOTelMetrics()
	if err != nil {
		return nil, nil, nil, err
	}

	return handle, promhttp.Handler(), func() error {
		return provider.Shutdown(context.Background())
	}, nil
}
