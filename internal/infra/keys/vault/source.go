package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"revix/internal/config"
	"revix/internal/infra/keys/soft"
	"revix/internal/infra/vaultclient"
)

type keyReader interface {
	ReadSigningKey(ctx context.Context, path string, version int) (vaultclient.KeyDocument, error)
}

// Source loads the signing key from a Vault KV v2 secret holding
// private_key_hex. Version 0 follows the current secret version.
type Source struct {
	client  keyReader
	path    string
	version int
}

func NewSource(client keyReader, path string, version int) (*Source, error) {
	if client == nil {
		return nil, errors.New("vault client is required")
	}
	if err := validatePath(path); err != nil {
		return nil, err
	}
	if version < 0 {
		return nil, fmt.Errorf("vault key version %d is invalid", version)
	}
	return &Source{client: client, path: path, version: version}, nil
}

func NewSourceFromConfig(cfg config.Config) (*Source, error) {
	if cfg.VaultAddr == "" || cfg.VaultToken == "" {
		return nil, errors.New("VAULT_ADDR and VAULT_TOKEN are required")
	}
	return NewSource(vaultclient.New(cfg.VaultAddr, cfg.VaultToken), cfg.VaultSigningKeyPath, cfg.VaultSigningKeyVersion)
}

func (s *Source) Name() string { return "vault" }

func (s *Source) Load(ctx context.Context) (*soft.Signer, error) {
	doc, err := s.client.ReadSigningKey(ctx, s.path, s.version)
	if err != nil {
		return nil, err
	}
	signer, err := soft.SecretPayload{Alg: doc.Alg, PrivateKeyHex: doc.PrivateKeyHex}.Signer()
	if err != nil {
		return nil, fmt.Errorf("vault %s version %d: %w", s.path, doc.Version, err)
	}
	return signer, nil
}

// KV v2 reads go through the data/ segment, e.g. secret/data/revix/signing.
func validatePath(path string) error {
	path = strings.Trim(path, "/")
	if path == "" {
		return errors.New("VAULT_SIGNING_KEY_PATH is required")
	}
	parts := strings.Split(path, "/")
	if len(parts) < 3 || parts[1] != "data" {
		return fmt.Errorf("vault path %q is not a KV v2 data path", path)
	}
	return nil
}
