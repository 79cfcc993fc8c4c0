package session

import (
	"net/http"

	"github.com/shandysiswandi/kvgate/internal/pkg/config"
	"github.com/shandysiswandi/kvgate/internal/pkg/instrument"
	"github.com/shandysiswandi/kvgate/internal/pkg/router"
	"github.com/shandysiswandi/kvgate/internal/pkg/sectoken"
	"github.com/shandysiswandi/kvgate/internal/pkg/validator"
	"github.com/shandysiswandi/kvgate/internal/session/inbound"
	"github.com/shandysiswandi/kvgate/internal/session/outbound/browserid"
	"github.com/shandysiswandi/kvgate/internal/session/usecase"
)

type Dependency struct {
	Config     config.Config
	Instrument instrument.Instrumentation
	Validator  validator.Validator
	Router     *router.Router
	Codec      *sectoken.Codec
}

func New(dep Dependency) error {
	ucDep := usecase.Dependency{
		Minter:     dep.Codec,
		Config:     dep.Config,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	}

	if dep.Config.GetBool("session.verifier.offline") {
		ucDep.Verifier = browserid.NewOffline(dep.Instrument)
	} else {
		opts := []browserid.RemoteOption{}
		if u := dep.Config.GetString("session.verifier.url"); u != "" {
			opts = append(opts, browserid.WithVerifyURL(u))
		}
		if timeout := dep.Config.GetSecond("session.verifier.timeout"); timeout > 0 {
			opts = append(opts, browserid.WithHTTPClient(&http.Client{Timeout: timeout}))
		}
		ucDep.Verifier = browserid.NewRemote(dep.Instrument, opts...)
	}

	uc := usecase.NewSession(ucDep)

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
