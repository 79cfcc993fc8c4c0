// Package browserid verifies BrowserID identity assertions, either against a
// remote verification service or by decoding the assertion bundle locally.
package browserid

import (
	"context"
	"errors"

	"github.com/shandysiswandi/kvgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrVerificationFailed indicates the assertion was rejected.
	ErrVerificationFailed = errors.New("browserid: assertion verification failed")

	// ErrMalformedAssertion indicates the assertion could not be decoded.
	ErrMalformedAssertion = errors.New("browserid: malformed assertion")
)

func startSpan(ctx context.Context, ins instrument.Instrumentation, name string) (context.Context, trace.Span) {
	return ins.Tracer("session.outbound.browserid").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrVerificationFailed) && !errors.Is(err, ErrMalformedAssertion) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
