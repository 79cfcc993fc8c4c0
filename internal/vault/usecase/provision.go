package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/kvgate/internal/pkg/audience"
	"github.com/shandysiswandi/kvgate/internal/pkg/goerror"
)

type (
	ProvisionInput struct {
		Audience string `validate:"required"`
	}
)

// Provision registers a tenant so its users can start storing values.
// Provisioning an existing tenant succeeds without change.
func (s *Usecase) Provision(ctx context.Context, in ProvisionInput) error {
	ctx, span := s.startSpan(ctx, "Provision")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	tenant := audience.Normalize(in.Audience)

	if err := s.store.Provision(ctx, tenant); err != nil {
		return err
	}

	slog.InfoContext(ctx, "tenant provisioned", "audience", tenant)
	return nil
}
