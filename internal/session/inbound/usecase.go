package inbound

import (
	"context"

	"github.com/shandysiswandi/kvgate/internal/session/usecase"
)

type uc interface {
	StartSession(ctx context.Context, in usecase.StartSessionInput) (string, error)
}
