package usecase

import (
	"context"

	"github.com/shandysiswandi/kvgate/internal/pkg/audience"
	"github.com/shandysiswandi/kvgate/internal/pkg/config"
	"github.com/shandysiswandi/kvgate/internal/pkg/goerror"
	"github.com/shandysiswandi/kvgate/internal/pkg/instrument"
	"github.com/shandysiswandi/kvgate/internal/pkg/sectoken"
	"github.com/shandysiswandi/kvgate/internal/pkg/validator"
	"github.com/shandysiswandi/kvgate/internal/vault/entity"
	"go.opentelemetry.io/otel/trace"
)

// storage is the gateway surface the vault depends on. Both the wide-column
// and the SQL gateways implement it.
type storage interface {
	Put(ctx context.Context, tenant, user, key, value string) error
	Get(ctx context.Context, tenant, user, key string) (*entity.Record, error)
	Delete(ctx context.Context, tenant, user, key string) error
	Provision(ctx context.Context, tenant string) error
	Ping(ctx context.Context) error
}

// tokenVerifier checks session tokens and returns their claims.
type tokenVerifier interface {
	Verify(token string) (sectoken.Claim, error)
}

type Usecase struct {
	store     storage
	tokens    tokenVerifier
	cfg       config.Config
	validator validator.Validator
	ins       instrument.Instrumentation
}

type Dependency struct {
	Store      storage
	Tokens     tokenVerifier
	Config     config.Config
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func NewVault(dep Dependency) *Usecase {
	return &Usecase{
		store:     dep.Store,
		tokens:    dep.Tokens,
		cfg:       dep.Config,
		validator: dep.Validator,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("vault.usecase").Start(ctx, name)
}

// authorize verifies the session token and checks that it grants exactly the
// user and tenant addressed by the request path. It returns the normalized
// tenant on success.
func (s *Usecase) authorize(token, appID, userID string) (string, error) {
	claim, err := s.tokens.Verify(token)
	if err != nil {
		return "", goerror.NewBusiness("Invalid Signature", goerror.CodeUnauthorized)
	}

	tenant := audience.Normalize(appID)
	if claim.User != userID || claim.Tenant != tenant {
		return "", goerror.NewBusiness("Permission Denied", goerror.CodeForbidden)
	}

	return tenant, nil
}
