package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/kvgate/internal/session"
	"github.com/shandysiswandi/kvgate/internal/vault"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.session.enabled") {
		if err := session.New(session.Dependency{
			Config:     a.config,
			Instrument: a.ins,
			Validator:  a.validator,
			Router:     a.router,
			Codec:      a.codec,
		}); err != nil {
			slog.Error("failed to init module session", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.vault.enabled") {
		if err := vault.New(vault.Dependency{
			Ctx:        a.ctx,
			Config:     a.config,
			Instrument: a.ins,
			Clock:      a.clock,
			Validator:  a.validator,
			Router:     a.router,
			Codec:      a.codec,
			Goroutine:  a.goroutine,
			Pool:       a.backendPool,
			DBConn:     a.dbConn,
		}); err != nil {
			slog.Error("failed to init module vault", "error", err)
			os.Exit(1)
		}
	}
}
