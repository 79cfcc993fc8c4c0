package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/shandysiswandi/kvgate/internal/pkg/clock"
	"github.com/shandysiswandi/kvgate/internal/pkg/config"
	"github.com/shandysiswandi/kvgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/kvgate/internal/pkg/instrument"
	"github.com/shandysiswandi/kvgate/internal/pkg/kdf"
	"github.com/shandysiswandi/kvgate/internal/pkg/pool"
	"github.com/shandysiswandi/kvgate/internal/pkg/router"
	"github.com/shandysiswandi/kvgate/internal/pkg/sectoken"
	"github.com/shandysiswandi/kvgate/internal/pkg/uid"
	"github.com/shandysiswandi/kvgate/internal/pkg/validator"
	"github.com/shandysiswandi/kvgate/internal/vault/outbound/sqlstore"
	"github.com/shandysiswandi/kvgate/internal/vault/outbound/widecol"
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          true,
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator
}

func (a *App) initKeys() {
	secret := a.config.GetString("authn.secret")

	deriver, err := kdf.New([]byte(secret))
	if err != nil {
		slog.Error("failed to init key deriver", "error", err)
		os.Exit(1)
	}

	signKey, err := deriver.SigningKey()
	if err != nil {
		slog.Error("failed to derive signing key", "error", err)
		os.Exit(1)
	}

	encKey, err := deriver.EncryptionKey()
	if err != nil {
		slog.Error("failed to derive encryption key", "error", err)
		os.Exit(1)
	}

	codec, err := sectoken.New(signKey, encKey, a.clock)
	if err != nil {
		slog.Error("failed to init token codec", "error", err)
		os.Exit(1)
	}
	a.codec = codec
}

func (a *App) initBackend() {
	switch a.config.GetString("vault.backend.driver") {
	case "postgres":
		a.initDatabase()
	default:
		a.initWideColumn()
	}
}

func (a *App) initDatabase() {
	config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	config.MaxConns = a.config.GetInt32("database.pool.max_conns")
	config.MinConns = a.config.GetInt32("database.pool.min_conns")
	config.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	config.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	config.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	if a.config.GetBool("database.apply_schema") {
		if err := sqlstore.ApplySchema(a.ctx, pool); err != nil {
			slog.Error("failed to apply DB schema", "error", err)
			os.Exit(1)
		}
	}

	a.dbConn = pool
}

func (a *App) initWideColumn() {
	hosts := a.config.GetArray("vault.backend.hosts")
	if len(hosts) == 0 {
		slog.Error("failed to init backend, no hosts configured")
		os.Exit(1)
	}

	a.redisClients = make(map[string]*redis.Client, len(hosts))
	for _, host := range hosts {
		opt, err := redis.ParseURL(host)
		if err != nil {
			slog.Error("failed to parse backend host url", "error", err, "host", host)
			os.Exit(1)
		}
		a.redisClients[host] = redis.NewClient(opt)
	}

	backendPool, err := pool.New(pool.Config[widecol.Client]{
		Hosts:          hosts,
		Max:            a.config.GetInt("vault.backend.pool.max_conns"),
		AcquireTimeout: a.config.GetSecond("vault.backend.pool.acquire_timeout_seconds"),
		IdleTimeout:    a.config.GetSecond("vault.backend.pool.idle_timeout_seconds"),
		ReapInterval:   a.config.GetSecond("vault.backend.pool.reap_interval_seconds"),
		Dial: func(ctx context.Context, host string) (widecol.Client, error) {
			return widecol.NewRedis(a.redisClients[host].Conn()), nil
		},
		Close: func(c widecol.Client) error {
			return c.Close()
		},
	})
	if err != nil {
		slog.Error("failed to init backend connection pool", "error", err)
		os.Exit(1)
	}

	a.backendPool = backendPool
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "BackendPool",
			fn: func(context.Context) error {
				if a.backendPool != nil {
					a.backendPool.Close()
				}

				return nil
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				for _, client := range a.redisClients {
					if err := client.Close(); err != nil {
						return err
					}
				}

				return nil
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				if a.dbConn != nil {
					a.dbConn.Close()
				}

				return nil
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
