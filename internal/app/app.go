package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/kvgate/internal/pkg/clock"
	"github.com/shandysiswandi/kvgate/internal/pkg/config"
	"github.com/shandysiswandi/kvgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/kvgate/internal/pkg/instrument"
	"github.com/shandysiswandi/kvgate/internal/pkg/pool"
	"github.com/shandysiswandi/kvgate/internal/pkg/router"
	"github.com/shandysiswandi/kvgate/internal/pkg/sectoken"
	"github.com/shandysiswandi/kvgate/internal/pkg/uid"
	"github.com/shandysiswandi/kvgate/internal/pkg/validator"
	"github.com/shandysiswandi/kvgate/internal/vault/outbound/widecol"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID
	codec     *sectoken.Codec

	// resources
	dbConn       *pgxpool.Pool
	redisClients map[string]*redis.Client
	backendPool  *pool.Pool[widecol.Client]

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initKeys()
	app.initBackend()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
