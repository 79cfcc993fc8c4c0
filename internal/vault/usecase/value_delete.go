package usecase

import (
	"context"

	"github.com/shandysiswandi/kvgate/internal/pkg/goerror"
)

type (
	DelValueInput struct {
		Token  string `validate:"required"`
		AppID  string `validate:"required"`
		UserID string `validate:"required"`
		Key    string `validate:"required,storekey"`
	}
)

func (s *Usecase) DelValue(ctx context.Context, in DelValueInput) error {
	ctx, span := s.startSpan(ctx, "DelValue")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	tenant, err := s.authorize(in.Token, in.AppID, in.UserID)
	if err != nil {
		return err
	}

	return s.store.Delete(ctx, tenant, in.UserID, in.Key)
}
