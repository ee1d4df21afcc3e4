package nats

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestNATSHeaderCarrier_TraceContextRoundTrip(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})

	msg := nats.NewMsg(SubjectListingCreated)
	carrier := NATSHeaderCarrier(msg.Header)
	propagation.TraceContext{}.Inject(trace.ContextWithSpanContext(context.Background(), sc), carrier)

	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", msg.Header.Get("traceparent"))
	assert.Len(t, carrier.Keys(), 1)

	extracted := trace.SpanContextFromContext(propagation.TraceContext{}.Extract(context.Background(), NATSHeaderCarrier(msg.Header)))
	assert.Equal(t, traceID, extracted.TraceID())
	assert.Equal(t, spanID, extracted.SpanID())
	assert.True(t, extracted.IsSampled())
}

func TestNATSHeaderCarrier_Empty(t *testing.T) {
	carrier := NATSHeaderCarrier(nats.Header{})
	assert.Empty(t, carrier.Get("traceparent"))
	assert.Empty(t, carrier.Keys())

	extracted := trace.SpanContextFromContext(propagation.TraceContext{}.Extract(context.Background(), carrier))
	assert.False(t, extracted.IsValid())
}

func TestPublisher_UnencodablePayload(t *testing.T) {
	// The payload is rejected before the connection is touched.
	p := &Publisher{logger: logger.NewNop()}

	err := p.Publish(context.Background(), SubjectListingUpdated, map[string]interface{}{"ch": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), SubjectListingUpdated)
}

func TestPublisher_CloseWithoutConnection(t *testing.T) {
	p := &Publisher{logger: logger.NewNop()}
	assert.NotPanics(t, p.Close)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), SubjectReviewCreated, struct{}{}))
}
