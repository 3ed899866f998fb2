package awssm

import (
	"context"
	"errors"
	"fmt"

	"revix/internal/config"
	"revix/internal/infra/awsclient"
	"revix/internal/infra/keys/soft"
)

type secretGetter interface {
	GetSecretValue(ctx context.Context, secretID, versionStage string) (awsclient.SecretValue, error)
}

// Source loads the signing key from an AWS Secrets Manager secret. An empty
// stage reads AWSCURRENT.
type Source struct {
	client   secretGetter
	secretID string
	stage    string
}

func NewSource(client secretGetter, secretID, stage string) (*Source, error) {
	if client == nil {
		return nil, errors.New("aws client is required")
	}
	if secretID == "" {
		return nil, errors.New("AWS_SIGNING_KEY_SECRET_ID is required")
	}
	return &Source{client: client, secretID: secretID, stage: stage}, nil
}

func NewSourceFromConfig(cfg config.Config) (*Source, error) {
	client, err := awsclient.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewSource(client, cfg.AWSSigningKeySecretID, cfg.AWSSigningKeyVersionStage)
}

func (s *Source) Name() string { return "aws-secrets-manager" }

func (s *Source) Load(ctx context.Context) (*soft.Signer, error) {
	value, err := s.client.GetSecretValue(ctx, s.secretID, s.stage)
	if err != nil {
		return nil, fmt.Errorf("aws secret %s: %w", s.secretID, err)
	}
	signer, err := soft.NewSignerFromSecret(value.Payload)
	if err != nil {
		return nil, fmt.Errorf("aws secret %s version %s: %w", s.secretID, value.VersionID, err)
	}
	return signer, nil
}
