package gcpsm

import (
	"context"
	"errors"
	"fmt"

	"revix/internal/config"
	"revix/internal/infra/gcpclient"
	"revix/internal/infra/keys/soft"
)

type secretAccessor interface {
	AccessSecret(ctx context.Context, secretID string) ([]byte, error)
}

// Source loads the signing key from the latest version of a GCP secret.
type Source struct {
	client   secretAccessor
	secretID string
}

func NewSource(client secretAccessor, secretID string) (*Source, error) {
	if client == nil {
		return nil, errors.New("gcp client is required")
	}
	if secretID == "" {
		return nil, errors.New("GCP_SIGNING_KEY_SECRET_ID is required")
	}
	return &Source{client: client, secretID: secretID}, nil
}

func NewSourceFromConfig(cfg config.Config) (*Source, error) {
	client, err := gcpclient.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewSource(client, cfg.GCPSigningKeySecretID)
}

func (s *Source) Name() string { return "gcp-secret-manager" }

func (s *Source) Load(ctx context.Context) (*soft.Signer, error) {
	raw, err := s.client.AccessSecret(ctx, s.secretID)
	if err != nil {
		return nil, fmt.Errorf("gcp secret %s: %w", s.secretID, err)
	}
	return soft.NewSignerFromSecret(raw)
}
