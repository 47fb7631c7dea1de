// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package telemetry installs an in-process OpenTelemetry tracer provider
// so the CLI can report what the engine did.
package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// Tracing holds the installed provider and its span store.
type Tracing struct {
	provider *sdktrace.TracerProvider
	exporter *tracetest.InMemoryExporter
}

// Setup installs a global tracer provider recording spans in memory.
//
// Tracing is opt-in: when enabled is false Setup returns nil and no global
// provider is registered. The methods of a nil *Tracing are no-ops.
func Setup(enabled bool) *Tracing {
	if !enabled {
		return nil
	}
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exp),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return &Tracing{provider: tp, exporter: exp}
}

// Report writes one line per finished span.
func (t *Tracing) Report(w io.Writer) error {
	if t == nil {
		return nil
	}
	for _, s := range t.exporter.GetSpans() {
		steps := int64(-1)
		for _, a := range s.Attributes {
			if a.Key == attribute.Key("uarray.steps") {
				steps = a.Value.AsInt64()
			}
		}
		if _, err := fmt.Fprintf(w, "%s steps=%d duration=%s status=%s\n",
			s.Name, steps, s.EndTime.Sub(s.StartTime), s.Status.Code); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown flushes and stops the provider.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
