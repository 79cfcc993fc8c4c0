package inbound

import (
	"context"

	"github.com/shandysiswandi/kvgate/internal/vault/entity"
	"github.com/shandysiswandi/kvgate/internal/vault/usecase"
)

type uc interface {
	PutValue(ctx context.Context, in usecase.PutValueInput) error
	GetValue(ctx context.Context, in usecase.GetValueInput) (*entity.Record, error)
	DelValue(ctx context.Context, in usecase.DelValueInput) error
	Provision(ctx context.Context, in usecase.ProvisionInput) error
	Heartbeat(ctx context.Context) bool
}
