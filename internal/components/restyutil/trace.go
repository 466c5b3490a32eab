package restyutil

import (
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TraceResty opens a span for every request made by client, it ends when the
// response arrived or the request failed.
func TraceResty(client *resty.Client, tracer trace.Tracer) {
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, span := tracer.Start(req.Context(), "http "+req.Method)
		span.SetAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL),
		)
		req.SetContext(ctx)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		span := trace.SpanFromContext(res.Request.Context())
		defer span.End()

		span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode()))
		if res.IsError() {
			span.SetStatus(codes.Error, res.Status())
		}
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		span := trace.SpanFromContext(req.Context())
		defer span.End()

		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
	})
}
