package vault

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/kvgate/internal/pkg/clock"
	"github.com/shandysiswandi/kvgate/internal/pkg/config"
	"github.com/shandysiswandi/kvgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/kvgate/internal/pkg/hash"
	"github.com/shandysiswandi/kvgate/internal/pkg/instrument"
	"github.com/shandysiswandi/kvgate/internal/pkg/pool"
	"github.com/shandysiswandi/kvgate/internal/pkg/router"
	"github.com/shandysiswandi/kvgate/internal/pkg/sectoken"
	"github.com/shandysiswandi/kvgate/internal/pkg/validator"
	"github.com/shandysiswandi/kvgate/internal/vault/inbound"
	"github.com/shandysiswandi/kvgate/internal/vault/outbound/sqlstore"
	"github.com/shandysiswandi/kvgate/internal/vault/outbound/store"
	"github.com/shandysiswandi/kvgate/internal/vault/outbound/widecol"
	"github.com/shandysiswandi/kvgate/internal/vault/usecase"
)

type Dependency struct {
	Ctx        context.Context
	Config     config.Config
	Instrument instrument.Instrumentation
	Clock      clock.Clocker
	Validator  validator.Validator
	Router     *router.Router
	Codec      *sectoken.Codec
	Goroutine  *goroutine.Manager
	Pool       *pool.Pool[widecol.Client]
	DBConn     *pgxpool.Pool
}

func New(dep Dependency) error {
	digest := hash.NewSHA1Hex()

	ucDep := usecase.Dependency{
		Tokens:     dep.Codec,
		Config:     dep.Config,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	}

	var ensureHeartbeat func(ctx context.Context) error

	switch dep.Config.GetString("vault.backend.driver") {
	case "postgres":
		if dep.DBConn == nil {
			return errors.New("vault: postgres driver selected without a database connection")
		}
		gw := sqlstore.New(sqlstore.Dependency{
			Conn:       dep.DBConn,
			Digest:     digest,
			Clock:      dep.Clock,
			Instrument: dep.Instrument,
		})
		ucDep.Store = gw
		ensureHeartbeat = gw.EnsureHeartbeat
	default:
		if dep.Pool == nil {
			return errors.New("vault: widecol driver selected without a connection pool")
		}
		gw := store.New(store.Dependency{
			Pool:       dep.Pool,
			Digest:     digest,
			Clock:      dep.Clock,
			Instrument: dep.Instrument,
		})
		ucDep.Store = gw
		ensureHeartbeat = gw.EnsureHeartbeat
	}

	uc := usecase.NewVault(ucDep)

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	if dep.Ctx != nil && dep.Goroutine != nil {
		dep.Goroutine.Go(dep.Ctx, ensureHeartbeat)
	}

	return nil
}
