package inbound

import (
	"github.com/shandysiswandi/kvgate/internal/pkg/router"
	"github.com/shandysiswandi/kvgate/internal/session/usecase"
)

type HTTPEndpoint struct {
	uc uc
}

// StartSession exchanges an identity assertion for a session token.
//
// Browser clients post a form, API clients post JSON; both carry the same
// assertion and audience fields. The token is returned as a bare text body.
func (h *HTTPEndpoint) StartSession(r *router.Request) (any, error) {
	var req StartSessionRequest

	if r.IsForm() {
		values, err := r.DecodeForm()
		if err != nil {
			return nil, err
		}
		req.Assertion = values.Get("assertion")
		req.Audience = values.Get("audience")
	} else if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	token, err := h.uc.StartSession(r.Context(), usecase.StartSessionInput{
		Assertion: req.Assertion,
		Audience:  req.Audience,
	})
	if err != nil {
		return nil, err
	}

	return router.Text{Value: token}, nil
}
