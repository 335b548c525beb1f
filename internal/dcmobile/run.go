package dcmobile

import (
	"context"
	"errors"
	"net/url"

	"dcinside-mobile/internal/components/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// run tracks one executing mutation.
type run struct {
	op      Operation
	session *Session
	span    trace.Span
	tel     telemetry.API
	release func()
}

// begin reserves session for op. The returned run must be ended.
func (c *Client) begin(ctx context.Context, op Operation, session *Session) (context.Context, *run, error) {
	release, err := session.acquire()
	if err != nil {
		return ctx, nil, &OpError{Op: op, Step: "session", Err: err}
	}
	ctx, span := tracer.Start(ctx, "dcmobile:"+string(op), trace.WithAttributes(
		attribute.String("dcmobile.session", session.ID),
	))
	return ctx, &run{
		op:      op,
		session: session,
		span:    span,
		tel:     telemetry.NewScopedAPI(string(op), c.tel),
		release: release,
	}, nil
}

func (r *run) end(result *MutationResult) {
	if result != nil {
		r.span.SetAttributes(
			attribute.Bool("dcmobile.success", result.Success),
			attribute.Int("dcmobile.http_status", result.HTTPStatus),
		)
		if !result.Success {
			r.tel.ReportWarning("result", r.session.ID, result.Message)
		}
	}
	r.span.End()
	r.release()
}

// read wraps the failure of a step that does not change server state.
// Transport failures on such steps may be retried by restarting the operation.
func (r *run) read(step string, err error) error {
	return r.fail(step, err, isTransportError(err))
}

// fatal wraps a failure that must not be retried.
func (r *run) fatal(step string, err error) error {
	return r.fail(step, err, false)
}

func (r *run) fail(step string, err error, retryable bool) error {
	r.span.RecordError(err)
	r.span.SetStatus(codes.Error, step)
	r.tel.ReportBroken(step, r.session.ID, err)
	return &OpError{Op: r.op, Step: step, Err: err, retryable: retryable}
}

func isTransportError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.status >= 500
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// sessionFor returns the member's session, or a fresh ephemeral session for a guest.
func (c *Client) sessionFor(id Identity) (*Session, error) {
	if m, ok := memberOf(id); ok {
		return m.Session, nil
	}
	return c.NewSession()
}

// validationFailure wraps caller input errors, which happen before any network call.
func validationFailure(op Operation, err error) error {
	return &OpError{Op: op, Step: "validate", Err: err}
}

func (p *Page) expectOK() error {
	if p.Status < 200 || p.Status >= 400 {
		return &httpStatusError{status: p.Status, url: p.URL}
	}
	return nil
}
