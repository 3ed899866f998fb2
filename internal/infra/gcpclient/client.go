package gcpclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"revix/internal/config"

	"golang.org/x/oauth2"
)

// Client reads secret versions from GCP Secret Manager.
type Client struct {
	endpoint   string
	projectID  string
	tokens     oauth2.TokenSource
	httpClient *http.Client
}

func New(endpoint, projectID string, tokens oauth2.TokenSource) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		projectID:  projectID,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func NewFromConfig(cfg config.Config) (*Client, error) {
	if cfg.GCPProjectID == "" || cfg.GCPAccessToken == "" {
		return nil, errors.New("GCP_PROJECT_ID and GCP_ACCESS_TOKEN are required")
	}
	endpoint := cfg.GCPSecretManagerEndpoint
	if endpoint == "" {
		endpoint = "https://secretmanager.googleapis.com"
	}
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GCPAccessToken, TokenType: "Bearer"})
	return New(endpoint, cfg.GCPProjectID, tokens), nil
}

// AccessSecret returns the payload of the latest enabled version.
func (c *Client) AccessSecret(ctx context.Context, secretID string) ([]byte, error) {
	return c.AccessSecretVersion(ctx, secretID, "latest")
}

func (c *Client) AccessSecretVersion(ctx context.Context, secretID, version string) ([]byte, error) {
	if secretID == "" {
		return nil, errors.New("secret id is required")
	}
	if version == "" {
		version = "latest"
	}
	path := fmt.Sprintf("/v1/projects/%s/secrets/%s/versions/%s:access",
		url.PathEscape(c.projectID), url.PathEscape(secretID), url.PathEscape(version))
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Payload struct {
			Data string `json:"data"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Payload.Data == "" {
		return nil, errors.New("secret payload missing")
	}
	return base64.StdEncoding.DecodeString(resp.Payload.Data)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if c == nil {
		return nil, errors.New("gcp client is nil")
	}
	if c.endpoint == "" || c.projectID == "" || c.tokens == nil {
		return nil, errors.New("gcp client missing configuration")
	}
	token, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("gcp token: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return nil, err
	}
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gcp secret manager failed: status %d", resp.StatusCode)
	}
	return body, nil
}
