package mq

import (
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("internal/storage/mq")

// kotelHooks traces produce requests with the global tracer provider and
// injects the span context into record headers.
func kotelHooks() []kgo.Hook {
	kt := kotel.NewTracer(
		kotel.TracerProvider(otel.GetTracerProvider()),
		kotel.TracerPropagator(otel.GetTextMapPropagator()),
	)
	return kotel.NewKotel(kotel.WithTracer(kt)).Hooks()
}
