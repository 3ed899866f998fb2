// Package youtube verifies OAuth access tokens against the YouTube Data API
// by listing the channel that owns the token.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"revix/internal/domain"

	"golang.org/x/oauth2"
)

const (
	ProviderName   = "youtube"
	DefaultBaseURL = "https://www.googleapis.com"
	channelsPath   = "/youtube/v3/channels"
	maxBodyBytes   = 1 << 20
)

type Verifier struct {
	baseURL string
	timeout time.Duration
	base    http.RoundTripper
}

type Option func(*Verifier)

// WithTransport replaces the transport underneath the bearer-token layer.
func WithTransport(rt http.RoundTripper) Option {
	return func(v *Verifier) {
		if rt != nil {
			v.base = rt
		}
	}
}

func NewVerifier(baseURL string, timeout time.Duration, opts ...Option) *Verifier {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	v := &Verifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		base:    http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type channelList struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title     string `json:"title"`
			CustomURL string `json:"customUrl"`
		} `json:"snippet"`
	} `json:"items"`
}

// Verify fails closed: any transport, status, or decoding problem is reported
// as an invalid credential. Provider response bodies are never surfaced.
func (v *Verifier) Verify(ctx context.Context, credential string) (domain.VerifiedIdentity, error) {
	token := strings.TrimSpace(credential)
	if token == "" {
		return domain.VerifiedIdentity{}, domain.ErrMissingCredential
	}
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	client := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   v.base,
		},
	}
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("mine", "true")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+channelsPath+"?"+q.Encode(), nil)
	if err != nil {
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return domain.VerifiedIdentity{}, ctx.Err()
		}
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}
	var list channelList
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&list); err != nil {
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}
	if len(list.Items) == 0 || list.Items[0].ID == "" {
		return domain.VerifiedIdentity{}, domain.ErrInvalidCredential
	}
	ch := list.Items[0]
	return domain.VerifiedIdentity{
		Provider:          ProviderName,
		ExternalAccountID: ch.ID,
		DisplayName:       ch.Snippet.Title,
		Handle:            ch.Snippet.CustomURL,
	}, nil
}
