package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInstrumentRestyEndsRetriedSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	client := resty.New().
		SetRetryCount(2).
		SetRetryWaitTime(time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Millisecond)
	InstrumentResty(client, NewTestAPI(t))

	ctx, root := provider.Tracer("test").Start(context.Background(), "operation")
	res, err := client.R().SetContext(ctx).Get(srv.URL)
	require.NoError(t, err)
	require.Equal(t, "ok", res.String())
	root.End()

	var attempts []sdktrace.ReadOnlySpan
	for _, span := range recorder.Ended() {
		if span.Name() == "http GET" {
			attempts = append(attempts, span)
		}
	}
	require.Len(t, attempts, 2)
	for _, span := range attempts {
		require.Equal(t, root.SpanContext().SpanID(), span.Parent().SpanID())
	}
	require.Equal(t, codes.Error, attempts[0].Status().Code)
	require.Equal(t, codes.Unset, attempts[1].Status().Code)
}
