package inbound

import (
	"github.com/shandysiswandi/kvgate/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/session/start", end.StartSession)
}
