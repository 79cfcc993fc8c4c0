package browserid

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shandysiswandi/kvgate/internal/pkg/instrument"
)

// Offline decodes assertion bundles locally without contacting a remote
// verification service. It checks the bundle structure and the audience
// binding but not the certificate chain signatures, which makes it suitable
// for development and trusted-network deployments only.
type Offline struct {
	parser *jwt.Parser
	ins    instrument.Instrumentation
}

// NewOffline builds an Offline verifier.
func NewOffline(ins instrument.Instrumentation) *Offline {
	return &Offline{
		parser: jwt.NewParser(),
		ins:    ins,
	}
}

type bundle struct {
	Certificates []string `json:"certificates"`
	Assertion    string   `json:"assertion"`
}

// Verify decodes the assertion bundle and returns the certified email when
// the assertion is bound to the expected audience.
func (o *Offline) Verify(ctx context.Context, assertion, audience string) (_ string, err error) {
	_, span := startSpan(ctx, o.ins, "OfflineVerify")
	defer func() { endSpan(span, err) }()

	b, err := decodeBundle(assertion)
	if err != nil {
		return "", err
	}

	email, err := o.certifiedEmail(b.Certificates)
	if err != nil {
		return "", err
	}

	aud, err := o.assertionAudience(b.Assertion)
	if err != nil {
		return "", err
	}
	if aud != audience {
		return "", ErrVerificationFailed
	}

	return email, nil
}

// decodeBundle accepts both bundle encodings: the '~'-joined certificate
// chain and the base64url JSON object form.
func decodeBundle(assertion string) (*bundle, error) {
	if strings.Contains(assertion, "~") {
		parts := strings.Split(assertion, "~")
		if len(parts) < 2 {
			return nil, ErrMalformedAssertion
		}
		return &bundle{
			Certificates: parts[:len(parts)-1],
			Assertion:    parts[len(parts)-1],
		}, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(assertion, "="))
	if err != nil {
		return nil, ErrMalformedAssertion
	}

	var b bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, ErrMalformedAssertion
	}
	if len(b.Certificates) == 0 || b.Assertion == "" {
		return nil, ErrMalformedAssertion
	}

	return &b, nil
}

// certifiedEmail reads principal.email from the last certificate in the
// chain, which certifies the leaf identity.
func (o *Offline) certifiedEmail(certs []string) (string, error) {
	if len(certs) == 0 {
		return "", ErrMalformedAssertion
	}

	claims := jwt.MapClaims{}
	if _, _, err := o.parser.ParseUnverified(certs[len(certs)-1], claims); err != nil {
		return "", ErrMalformedAssertion
	}

	principal, ok := claims["principal"].(map[string]any)
	if !ok {
		return "", ErrMalformedAssertion
	}

	email, ok := principal["email"].(string)
	if !ok || email == "" {
		return "", ErrMalformedAssertion
	}

	return email, nil
}

func (o *Offline) assertionAudience(assertion string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := o.parser.ParseUnverified(assertion, claims); err != nil {
		return "", ErrMalformedAssertion
	}

	aud, ok := claims["aud"].(string)
	if !ok || aud == "" {
		return "", ErrMalformedAssertion
	}

	return aud, nil
}
