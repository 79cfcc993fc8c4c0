package inbound

import (
	"github.com/shandysiswandi/kvgate/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.PUT("/app/:appid/users/:userid/keys/:key", end.PutValue)
	r.GET("/app/:appid/users/:userid/keys/:key", end.GetValue)
	r.DELETE("/app/:appid/users/:userid/keys/:key", end.DelValue)

	r.POST("/provision", end.Provision)
	r.GET("/__heartbeat__", end.Heartbeat)
}
