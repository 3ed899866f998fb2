package oidc

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"revix/internal/config"
	"revix/internal/domain"
)

const (
	ProviderName       = "oidc"
	defaultHTTPTimeout = 5 * time.Second
	discoveryPath      = "/.well-known/openid-configuration"
)

// Verifier accepts RS256 ID tokens from one issuer. The token subject becomes
// the external account id.
type Verifier struct {
	issuer    string
	audience  string
	clockSkew time.Duration
	now       func() time.Time
	jwks      *jwksCache
}

type Option func(*Verifier)

func WithHTTPClient(client *http.Client) Option {
	return func(v *Verifier) {
		if client != nil {
			v.jwks.httpClient = client
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
			v.jwks.now = now
		}
	}
}

func NewVerifier(ctx context.Context, cfg config.Config, opts ...Option) (*Verifier, error) {
	issuer := strings.TrimSpace(cfg.OIDCIssuerURL)
	if issuer == "" {
		return nil, errors.New("OIDC_ISSUER_URL is required")
	}
	v := &Verifier{
		issuer:    issuer,
		audience:  strings.TrimSpace(cfg.OIDCAudience),
		clockSkew: cfg.OIDCClockSkew(),
		now:       time.Now,
		jwks:      newJWKSCache(strings.TrimSpace(cfg.OIDCJWKSURL), &http.Client{Timeout: defaultHTTPTimeout}),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.jwks.url == "" {
		discovered, err := discoverJWKSURL(ctx, v.jwks.httpClient, issuer)
		if err != nil {
			return nil, err
		}
		v.jwks.url = discovered
	}
	return v, nil
}

func (v *Verifier) Verify(ctx context.Context, credential string) (domain.VerifiedIdentity, error) {
	if v == nil {
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}
	token := strings.TrimSpace(credential)
	if token == "" {
		return domain.VerifiedIdentity{}, domain.ErrMissingCredential
	}
	header, claims, signingInput, signature, err := parseJWT(token)
	if err != nil {
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}
	if alg, _ := header["alg"].(string); alg != "RS256" {
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}
	if typ, _ := header["typ"].(string); typ != "" && !strings.EqualFold(typ, "JWT") {
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}
	kid, _ := header["kid"].(string)
	pubKey, err := v.jwks.getKey(ctx, kid)
	if err != nil {
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}
	if err := verifyRS256(pubKey, signingInput, signature); err != nil {
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}
	if err := v.validateClaims(claims); err != nil {
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}
	identity := identityFromClaims(claims)
	if identity.ExternalAccountID == "" {
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}
	return identity, nil
}

func identityFromClaims(claims map[string]any) domain.VerifiedIdentity {
	identity := domain.VerifiedIdentity{Provider: ProviderName}
	identity.ExternalAccountID, _ = claims["sub"].(string)
	identity.DisplayName, _ = claims["name"].(string)
	if handle, _ := claims["preferred_username"].(string); handle != "" {
		identity.Handle = handle
	} else {
		identity.Handle, _ = claims["email"].(string)
	}
	return identity
}

func discoverJWKSURL(ctx context.Context, client *http.Client, issuer string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(issuer, "/")+discoveryPath, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.New("oidc discovery failed")
	}
	var payload struct {
		JWKSURI string `json:"jwks_uri"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.JWKSURI == "" {
		return "", errors.New("oidc discovery missing jwks_uri")
	}
	return payload.JWKSURI, nil
}

func parseJWT(token string) (map[string]any, map[string]any, string, []byte, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, nil, "", nil, errors.New("invalid token format")
	}
	var header, claims map[string]any
	if err := decodeSegment(parts[0], &header); err != nil {
		return nil, nil, "", nil, err
	}
	if err := decodeSegment(parts[1], &claims); err != nil {
		return nil, nil, "", nil, err
	}
	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, nil, "", nil, err
	}
	return header, claims, parts[0] + "." + parts[1], signature, nil
}

func decodeSegment(seg string, out any) error {
	raw, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func verifyRS256(pubKey *rsa.PublicKey, signingInput string, signature []byte) error {
	hash := sha256.Sum256([]byte(signingInput))
	return rsa.VerifyPKCS1v15(pubKey, crypto.SHA256, hash[:], signature)
}

func (v *Verifier) validateClaims(claims map[string]any) error {
	now := v.now()
	if iss, _ := claims["iss"].(string); iss != v.issuer {
		return errors.New("issuer mismatch")
	}
	if v.audience != "" && !audienceMatches(claims["aud"], v.audience) {
		return errors.New("audience mismatch")
	}
	exp, ok := numericDate(claims["exp"])
	if !ok {
		return errors.New("exp claim required")
	}
	if now.After(exp.Add(v.clockSkew)) {
		return errors.New("token expired")
	}
	if nbf, ok := numericDate(claims["nbf"]); ok && now.Add(v.clockSkew).Before(nbf) {
		return errors.New("token not yet valid")
	}
	return nil
}

func numericDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(n, 0), true
	default:
		return time.Time{}, false
	}
}

func audienceMatches(raw any, expected string) bool {
	switch v := raw.(type) {
	case string:
		return v == expected
	case []any:
		for _, entry := range v {
			if s, ok := entry.(string); ok && s == expected {
				return true
			}
		}
	}
	return false
}
