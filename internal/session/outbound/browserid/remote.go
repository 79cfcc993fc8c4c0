package browserid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shandysiswandi/kvgate/internal/pkg/instrument"
)

// DefaultVerifyURL is the public BrowserID verification endpoint.
const DefaultVerifyURL = "https://browserid.org/verify"

const defaultTimeout = 10 * time.Second

// Remote verifies assertions by delegating to a BrowserID verification
// service over HTTPS.
type Remote struct {
	client    *http.Client
	verifyURL string
	ins       instrument.Instrumentation
}

// RemoteOption customizes a Remote verifier.
type RemoteOption func(*Remote)

// WithHTTPClient replaces the default HTTP client. The client must carry its
// own timeout.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) { r.client = c }
}

// WithVerifyURL points the verifier at a non-default verification service.
func WithVerifyURL(u string) RemoteOption {
	return func(r *Remote) { r.verifyURL = u }
}

// NewRemote builds a Remote verifier with a timeout-bounded HTTP client.
func NewRemote(ins instrument.Instrumentation, opts ...RemoteOption) *Remote {
	r := &Remote{
		client:    &http.Client{Timeout: defaultTimeout},
		verifyURL: DefaultVerifyURL,
		ins:       ins,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type verifyResponse struct {
	Status   string `json:"status"`
	Email    string `json:"email"`
	Audience string `json:"audience"`
	Reason   string `json:"reason"`
}

// Verify posts the assertion and audience to the verification service and
// returns the verified email on success.
func (r *Remote) Verify(ctx context.Context, assertion, audience string) (_ string, err error) {
	ctx, span := startSpan(ctx, r.ins, "RemoteVerify")
	defer func() { endSpan(span, err) }()

	form := url.Values{}
	form.Set("assertion", assertion)
	form.Set("audience", audience)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("browserid: verify request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("browserid: read verify response: %w", err)
	}

	var vr verifyResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return "", fmt.Errorf("browserid: decode verify response: %w", err)
	}

	if vr.Status != "okay" || vr.Email == "" {
		return "", ErrVerificationFailed
	}

	return vr.Email, nil
}
