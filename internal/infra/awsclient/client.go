// Package awsclient reads signing key secrets from AWS Secrets Manager over
// its JSON protocol.
package awsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"revix/internal/config"
	"revix/internal/domain"
)

const (
	// DefaultVersionStage is the staging label Secrets Manager serves when
	// none is requested.
	DefaultVersionStage = "AWSCURRENT"

	maxResponseBytes = 1 << 20
)

// SecretValue is one resolved version of a secret. Payload holds
// SecretString, or the decoded SecretBinary for binary secrets.
type SecretValue struct {
	Name          string
	VersionID     string
	VersionStages []string
	Payload       []byte
}

// APIError is a non-200 reply. Type is the exception name without its
// namespace. The service message is not kept.
type APIError struct {
	Status int
	Type   string
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("secrets manager: status %d", e.Status)
	}
	return fmt.Sprintf("secrets manager: %s (status %d)", e.Type, e.Status)
}

func (e *APIError) Unwrap() error {
	if e.Type == "ResourceNotFoundException" {
		return domain.ErrNotFound
	}
	return nil
}

type Client struct {
	endpoint   string
	signer     sigV4
	httpClient *http.Client
	now        func() time.Time
}

func New(endpoint, region, accessKey, secretKey, sessionToken string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		signer: sigV4{
			region:       region,
			service:      "secretsmanager",
			accessKey:    accessKey,
			secretKey:    secretKey,
			sessionToken: sessionToken,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

func NewFromConfig(cfg config.Config) (*Client, error) {
	if cfg.AWSRegion == "" || cfg.AWSAccessKeyID == "" || cfg.AWSSecretAccessKey == "" {
		return nil, errors.New("AWS_REGION, AWS_ACCESS_KEY_ID, and AWS_SECRET_ACCESS_KEY are required")
	}
	endpoint := cfg.AWSSecretsManagerEndpoint
	if endpoint == "" {
		endpoint = "https://secretsmanager." + cfg.AWSRegion + ".amazonaws.com"
	}
	return New(endpoint, cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.AWSSessionToken), nil
}

// GetSecretValue fetches the version of secretID carrying versionStage.
// An empty stage means AWSCURRENT.
func (c *Client) GetSecretValue(ctx context.Context, secretID, versionStage string) (SecretValue, error) {
	if secretID == "" {
		return SecretValue{}, errors.New("secret id is required")
	}
	if versionStage == "" {
		versionStage = DefaultVersionStage
	}
	var out struct {
		Name          string   `json:"Name"`
		VersionID     string   `json:"VersionId"`
		VersionStages []string `json:"VersionStages"`
		SecretString  *string  `json:"SecretString"`
		SecretBinary  []byte   `json:"SecretBinary"`
	}
	err := c.call(ctx, "GetSecretValue", map[string]string{
		"SecretId":     secretID,
		"VersionStage": versionStage,
	}, &out)
	if err != nil {
		return SecretValue{}, err
	}
	value := SecretValue{Name: out.Name, VersionID: out.VersionID, VersionStages: out.VersionStages}
	switch {
	case out.SecretString != nil && *out.SecretString != "":
		value.Payload = []byte(*out.SecretString)
	case len(out.SecretBinary) > 0:
		value.Payload = out.SecretBinary
	default:
		return SecretValue{}, fmt.Errorf("secret %s version %s has no value", secretID, out.VersionID)
	}
	return value, nil
}

func (c *Client) call(ctx context.Context, action string, in, out any) error {
	if c == nil || c.endpoint == "" || c.signer.region == "" || c.signer.accessKey == "" || c.signer.secretKey == "" {
		return errors.New("aws client missing configuration")
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-amz-json-1.1")
	req.Header.Set("X-Amz-Target", "secretsmanager."+action)
	c.signer.sign(req, payload, c.now())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body := io.LimitReader(resp.Body, maxResponseBytes)

	if resp.StatusCode != http.StatusOK {
		var fault struct {
			Type string `json:"__type"`
		}
		_ = json.NewDecoder(body).Decode(&fault)
		kind := fault.Type
		if i := strings.LastIndex(kind, "#"); i >= 0 {
			kind = kind[i+1:]
		}
		return &APIError{Status: resp.StatusCode, Type: kind}
	}
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", action, err)
	}
	return nil
}
