package inbound

import (
	"net/http"

	"github.com/shandysiswandi/kvgate/internal/pkg/router"
	"github.com/shandysiswandi/kvgate/internal/vault/usecase"
)

// HeaderSignature carries the session token on storage requests.
const HeaderSignature = "Signature"

type HTTPEndpoint struct {
	uc uc
}

// PutValue stores a value under the addressed key. The value arrives as a
// form field or as a JSON body.
func (h *HTTPEndpoint) PutValue(r *router.Request) (any, error) {
	var req PutValueRequest

	if r.IsForm() {
		values, err := r.DecodeForm()
		if err != nil {
			return nil, err
		}
		req.Value = values.Get("value")
	} else if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.PutValue(r.Context(), usecase.PutValueInput{
		Token:  r.GetHeader(HeaderSignature),
		AppID:  r.GetParam("appid"),
		UserID: r.GetParam("userid"),
		Key:    r.GetParam("key"),
		Value:  req.Value,
	})
}

// GetValue reads a value and its write metadata.
func (h *HTTPEndpoint) GetValue(r *router.Request) (any, error) {
	record, err := h.uc.GetValue(r.Context(), usecase.GetValueInput{
		Token:  r.GetHeader(HeaderSignature),
		AppID:  r.GetParam("appid"),
		UserID: r.GetParam("userid"),
		Key:    r.GetParam("key"),
	})
	if err != nil {
		return nil, err
	}

	return RecordResponse{
		Key:       record.Key,
		Value:     record.Value,
		Timestamp: record.Timestamp,
		User:      record.User,
		Bucket:    record.Bucket,
	}, nil
}

// DelValue removes a value.
func (h *HTTPEndpoint) DelValue(r *router.Request) (any, error) {
	return nil, h.uc.DelValue(r.Context(), usecase.DelValueInput{
		Token:  r.GetHeader(HeaderSignature),
		AppID:  r.GetParam("appid"),
		UserID: r.GetParam("userid"),
		Key:    r.GetParam("key"),
	})
}

// Provision registers a tenant.
func (h *HTTPEndpoint) Provision(r *router.Request) (any, error) {
	var req ProvisionRequest

	if r.IsForm() {
		values, err := r.DecodeForm()
		if err != nil {
			return nil, err
		}
		req.Audience = values.Get("audience")
	} else if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.Provision(r.Context(), usecase.ProvisionInput{Audience: req.Audience})
}

// Heartbeat answers OK when a storage round trip succeeds, ERROR otherwise.
func (h *HTTPEndpoint) Heartbeat(r *router.Request) (any, error) {
	if !h.uc.Heartbeat(r.Context()) {
		return router.Text{Value: "ERROR", Code: http.StatusInternalServerError}, nil
	}
	return router.Text{Value: "OK"}, nil
}
