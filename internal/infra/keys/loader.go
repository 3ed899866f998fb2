// Package keys selects the single signing key source configured for the
// process.
package keys

import (
	"context"
	"errors"
	"fmt"

	"revix/internal/config"
	"revix/internal/domain"
	"revix/internal/infra/keys/awssm"
	"revix/internal/infra/keys/gcpsm"
	"revix/internal/infra/keys/soft"
	"revix/internal/infra/keys/vault"
)

// Source yields the signing key once at startup.
type Source interface {
	Name() string
	Load(ctx context.Context) (*soft.Signer, error)
}

type staticSource struct {
	name string
	load func() (*soft.Signer, error)
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) Load(context.Context) (*soft.Signer, error) { return s.load() }

// Select returns the first configured source in precedence order: env hex,
// key file, Vault, AWS Secrets Manager, GCP Secret Manager.
func Select(cfg config.Config) (Source, error) {
	switch {
	case cfg.SigningPrivateKeyHex != "":
		return staticSource{name: "env", load: func() (*soft.Signer, error) {
			return soft.NewSignerFromHex(cfg.SigningPrivateKeyHex)
		}}, nil
	case cfg.SigningKeyFile != "":
		return staticSource{name: "file", load: func() (*soft.Signer, error) {
			return soft.NewSignerFromFile(cfg.SigningKeyFile)
		}}, nil
	case cfg.VaultSigningKeyPath != "":
		return checked(vault.NewSourceFromConfig(cfg))
	case cfg.AWSSigningKeySecretID != "":
		return checked(awssm.NewSourceFromConfig(cfg))
	case cfg.GCPSigningKeySecretID != "":
		return checked(gcpsm.NewSourceFromConfig(cfg))
	default:
		return nil, errors.New("no signing key configured: set PRIVATE_KEY, SIGNING_KEY_FILE, VAULT_SIGNING_KEY_PATH, AWS_SIGNING_KEY_SECRET_ID or GCP_SIGNING_KEY_SECRET_ID")
	}
}

func checked[S Source](src S, err error) (Source, error) {
	if err != nil {
		return nil, err
	}
	return src, nil
}

// Load resolves and loads the signing key. Every failure wraps
// domain.ErrSigning.
func Load(ctx context.Context, cfg config.Config) (*soft.Signer, string, error) {
	src, err := Select(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	signer, err := src.Load(ctx)
	if err != nil {
		return nil, src.Name(), fmt.Errorf("%w: load key from %s: %v", domain.ErrSigning, src.Name(), err)
	}
	return signer, src.Name(), nil
}
