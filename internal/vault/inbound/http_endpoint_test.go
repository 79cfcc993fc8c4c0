package inbound

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shandysiswandi/kvgate/internal/pkg/router"
	"github.com/shandysiswandi/kvgate/internal/vault/entity"
	"github.com/shandysiswandi/kvgate/internal/vault/usecase"
)

type fakeUsecase struct {
	healthy bool
}

func (f *fakeUsecase) PutValue(context.Context, usecase.PutValueInput) error { return nil }
func (f *fakeUsecase) GetValue(context.Context, usecase.GetValueInput) (*entity.Record, error) {
	return nil, nil
}
func (f *fakeUsecase) DelValue(context.Context, usecase.DelValueInput) error   { return nil }
func (f *fakeUsecase) Provision(context.Context, usecase.ProvisionInput) error { return nil }
func (f *fakeUsecase) Heartbeat(context.Context) bool                          { return f.healthy }

func heartbeatRequest() *router.Request {
	return &router.Request{Request: httptest.NewRequest(http.MethodGet, "/__heartbeat__", nil)}
}

func TestHeartbeatHealthy(t *testing.T) {
	// Arrange
	end := &HTTPEndpoint{uc: &fakeUsecase{healthy: true}}

	// Act
	resp, err := end.Heartbeat(heartbeatRequest())

	// Assert
	if err != nil {
		t.Fatalf("Heartbeat() error = %v", err)
	}
	text, ok := resp.(router.Text)
	if !ok {
		t.Fatalf("response = %T, want router.Text", resp)
	}
	if text.Value != "OK" || text.Code != 0 {
		t.Fatalf("response = %+v, want OK with default status", text)
	}
}

func TestHeartbeatUnhealthy(t *testing.T) {
	// Arrange
	end := &HTTPEndpoint{uc: &fakeUsecase{healthy: false}}

	// Act
	resp, err := end.Heartbeat(heartbeatRequest())

	// Assert
	if err != nil {
		t.Fatalf("Heartbeat() error = %v", err)
	}
	text, ok := resp.(router.Text)
	if !ok {
		t.Fatalf("response = %T, want router.Text", resp)
	}
	if text.Value != "ERROR" || text.Code != http.StatusInternalServerError {
		t.Fatalf("response = %+v, want ERROR with status 500", text)
	}
}
