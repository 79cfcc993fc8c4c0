package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/kvgate/internal/pkg/audience"
	"github.com/shandysiswandi/kvgate/internal/pkg/goerror"
)

type (
	StartSessionInput struct {
		Assertion string `validate:"required"`
		Audience  string `validate:"required"`
	}
)

// StartSession exchanges an identity assertion for a signed session token.
//
// The audience is normalized before verification so that every spelling of
// the same site ("Example.com", "https://example.com:443") maps to one
// tenant and one verifier call.
func (s *Usecase) StartSession(ctx context.Context, in StartSessionInput) (string, error) {
	ctx, span := s.startSpan(ctx, "StartSession")
	defer span.End()

	in.Assertion = strings.TrimSpace(in.Assertion)
	in.Audience = strings.TrimSpace(in.Audience)

	if err := s.validator.Validate(in); err != nil {
		return "", goerror.NewInvalidInput(err)
	}

	tenant := audience.Normalize(in.Audience)

	email, err := s.verifier.Verify(ctx, in.Assertion, tenant)
	if err != nil {
		slog.WarnContext(ctx, "assertion verification failed", "audience", tenant, "error", err)
		return "", goerror.NewBusiness("Invalid assertion", goerror.CodeUnauthorized)
	}

	token, err := s.minter.Mint(email, tenant)
	if err != nil {
		slog.ErrorContext(ctx, "failed to mint session token", "audience", tenant, "error", err)
		return "", goerror.NewServer(err)
	}

	return token, nil
}
