package usecase

import (
	"context"
	"log/slog"
)

// Heartbeat reports whether a full round trip through the storage backend
// succeeds. It never returns an error; failures are reported as false so the
// probe endpoint can answer with a body either way.
func (s *Usecase) Heartbeat(ctx context.Context) bool {
	ctx, span := s.startSpan(ctx, "Heartbeat")
	defer span.End()

	if err := s.store.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "heartbeat probe failed", "error", err)
		return false
	}

	return true
}
