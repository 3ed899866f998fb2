// Package attest is a thin client for the attestation service HTTP API.
package attest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Kind string

const (
	AccountOwnership Kind = "account_ownership"
	ContentOwnership Kind = "content_ownership"
	RoyaltyTransfer  Kind = "royalty_transfer"
)

var routes = map[Kind]string{
	AccountOwnership: "/api/proofOfAccountOwnership",
	ContentOwnership: "/api/proofOfVideoOwnership",
	RoyaltyTransfer:  "/api/proofOfRoyaltyRevenue",
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// Attestation is the signed result. Binding is the X-Identity-Binding
// response header.
type Attestation struct {
	MsgHash   string `json:"msgHash"`
	Signature string `json:"signature"`
	Binding   string `json:"-"`
}

type SignerInfo struct {
	Address     string            `json:"address"`
	Semantics   map[string]string `json:"semantics"`
	AuthMode    string            `json:"auth_mode"`
	BindingMode string            `json:"binding_mode"`
}

// APIError is a non-2xx response carrying the service's error code.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("attestation service: status %d %s: %s", e.Status, e.Code, e.Message)
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = client
	}
}

// WithToken sets the bearer credential sent with every attestation request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.Token = token
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *Client) Request(ctx context.Context, kind Kind, params url.Values) (*Attestation, error) {
	path, ok := routes[kind]
	if !ok {
		return nil, fmt.Errorf("unknown claim kind %q", kind)
	}
	var out Attestation
	resp, err := c.get(ctx, path, params, true, &out)
	if err != nil {
		return nil, err
	}
	out.Binding = resp.Header.Get("X-Identity-Binding")
	return &out, nil
}

func (c *Client) Signer(ctx context.Context) (*SignerInfo, error) {
	var out SignerInfo
	if _, err := c.get(ctx, "/v1/signer", nil, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, withToken bool, out any) (*http.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("attest client is nil")
	}
	if c.BaseURL == "" {
		return nil, fmt.Errorf("attestation service base URL is required")
	}
	endpoint := c.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if withToken && c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return nil, apiErr
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}
