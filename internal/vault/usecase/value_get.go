package usecase

import (
	"context"

	"github.com/shandysiswandi/kvgate/internal/pkg/goerror"
	"github.com/shandysiswandi/kvgate/internal/vault/entity"
)

type (
	GetValueInput struct {
		Token  string `validate:"required"`
		AppID  string `validate:"required"`
		UserID string `validate:"required"`
		Key    string `validate:"required,storekey"`
	}
)

func (s *Usecase) GetValue(ctx context.Context, in GetValueInput) (*entity.Record, error) {
	ctx, span := s.startSpan(ctx, "GetValue")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	tenant, err := s.authorize(in.Token, in.AppID, in.UserID)
	if err != nil {
		return nil, err
	}

	return s.store.Get(ctx, tenant, in.UserID, in.Key)
}
