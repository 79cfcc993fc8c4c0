package usecase

import (
	"context"

	"github.com/shandysiswandi/kvgate/internal/pkg/goerror"
)

type (
	PutValueInput struct {
		Token  string `validate:"required"`
		AppID  string `validate:"required"`
		UserID string `validate:"required"`
		Key    string `validate:"required,storekey"`
		Value  string
	}
)

func (s *Usecase) PutValue(ctx context.Context, in PutValueInput) error {
	ctx, span := s.startSpan(ctx, "PutValue")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	tenant, err := s.authorize(in.Token, in.AppID, in.UserID)
	if err != nil {
		return err
	}

	return s.store.Put(ctx, tenant, in.UserID, in.Key, in.Value)
}
