package usecase

import (
	"context"

	"github.com/shandysiswandi/kvgate/internal/pkg/config"
	"github.com/shandysiswandi/kvgate/internal/pkg/instrument"
	"github.com/shandysiswandi/kvgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// verifier checks an identity assertion against an audience and returns the
// asserted user email.
type verifier interface {
	Verify(ctx context.Context, assertion, audience string) (string, error)
}

// minter issues signed session tokens bound to a user and tenant.
type minter interface {
	Mint(user, tenant string) (string, error)
}

type Usecase struct {
	verifier  verifier
	minter    minter
	cfg       config.Config
	validator validator.Validator
	ins       instrument.Instrumentation
}

type Dependency struct {
	Verifier   verifier
	Minter     minter
	Config     config.Config
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func NewSession(dep Dependency) *Usecase {
	return &Usecase{
		verifier:  dep.Verifier,
		minter:    dep.Minter,
		cfg:       dep.Config,
		validator: dep.Validator,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("session.usecase").Start(ctx, name)
}
