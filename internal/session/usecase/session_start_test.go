package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/kvgate/internal/pkg/goerror"
	"github.com/shandysiswandi/kvgate/internal/pkg/instrument"
	"github.com/shandysiswandi/kvgate/internal/pkg/validator"
)

type fakeVerifier struct {
	email    string
	err      error
	audience string
}

func (f *fakeVerifier) Verify(_ context.Context, _, audience string) (string, error) {
	f.audience = audience
	return f.email, f.err
}

type fakeMinter struct {
	token string
	err   error
	user  string
}

func (f *fakeMinter) Mint(user, _ string) (string, error) {
	f.user = user
	return f.token, f.err
}

func newTestUsecase(t *testing.T, v *fakeVerifier, m *fakeMinter) *Usecase {
	t.Helper()

	val, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	return NewSession(Dependency{
		Verifier:   v,
		Minter:     m,
		Validator:  val,
		Instrument: instrument.NewNoop(),
	})
}

func TestStartSessionReturnsToken(t *testing.T) {
	// Arrange
	verifier := &fakeVerifier{email: "alice@example.com"}
	minter := &fakeMinter{token: "tok-abc"}
	uc := newTestUsecase(t, verifier, minter)

	// Act
	token, err := uc.StartSession(context.Background(), StartSessionInput{
		Assertion: "some-assertion",
		Audience:  "https://Example.com:443/app",
	})

	// Assert
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if token != "tok-abc" {
		t.Fatalf("token = %q, want %q", token, "tok-abc")
	}
	if verifier.audience != "https://example.com" {
		t.Fatalf("verifier saw audience %q, want normalized %q", verifier.audience, "https://example.com")
	}
	if minter.user != "alice@example.com" {
		t.Fatalf("minter saw user %q, want verified email", minter.user)
	}
}

func TestStartSessionRejectsBadAssertion(t *testing.T) {
	// Arrange
	verifier := &fakeVerifier{err: errors.New("bad signature")}
	uc := newTestUsecase(t, verifier, &fakeMinter{})

	// Act
	_, err := uc.StartSession(context.Background(), StartSessionInput{
		Assertion: "forged",
		Audience:  "example.com",
	})

	// Assert
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("StartSession() error = %v, want *goerror.Error", err)
	}
	if gerr.Code() != goerror.CodeUnauthorized {
		t.Fatalf("code = %v, want CodeUnauthorized", gerr.Code())
	}
}

func TestStartSessionRequiresFields(t *testing.T) {
	// Arrange
	uc := newTestUsecase(t, &fakeVerifier{email: "a@b.c"}, &fakeMinter{token: "t"})

	// Act
	_, err := uc.StartSession(context.Background(), StartSessionInput{Audience: "example.com"})

	// Assert
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("StartSession() error = %v, want *goerror.Error", err)
	}
	if gerr.Code() != goerror.CodeInvalidInput {
		t.Fatalf("code = %v, want CodeInvalidInput", gerr.Code())
	}
}

func TestStartSessionMintFailureIsServerError(t *testing.T) {
	// Arrange
	uc := newTestUsecase(t,
		&fakeVerifier{email: "a@b.c"},
		&fakeMinter{err: errors.New("cipher failure")},
	)

	// Act
	_, err := uc.StartSession(context.Background(), StartSessionInput{
		Assertion: "ok",
		Audience:  "example.com",
	})

	// Assert
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("StartSession() error = %v, want *goerror.Error", err)
	}
	if gerr.Code() != goerror.CodeInternal {
		t.Fatalf("code = %v, want CodeInternal", gerr.Code())
	}
}
