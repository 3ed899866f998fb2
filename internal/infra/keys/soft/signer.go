package soft

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"revix/internal/domain"
	"revix/internal/infra/crypto"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Signer holds exactly one secp256k1 key for the life of the process.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func NewSigner(key *ecdsa.PrivateKey) (*Signer, error) {
	if key == nil {
		return nil, errors.New("private key is required")
	}
	return &Signer{key: key, address: ethcrypto.PubkeyToAddress(key.PublicKey)}, nil
}

// NewSignerFromHex accepts 32 bytes of hex with or without the 0x prefix.
// Parse errors never include the input.
func NewSignerFromHex(value string) (*Signer, error) {
	key, err := ParsePrivateKeyHex(value)
	if err != nil {
		return nil, err
	}
	return NewSigner(key)
}

// NewSignerFromFile reads a hex key from path. Surrounding whitespace is
// ignored.
func NewSignerFromFile(path string) (*Signer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signing key file: %w", err)
	}
	return NewSignerFromHex(string(raw))
}

func ParsePrivateKeyHex(value string) (*ecdsa.PrivateKey, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	if value == "" {
		return nil, errors.New("private key is empty")
	}
	if len(value) != 64 {
		return nil, errors.New("invalid secp256k1 private key length")
	}
	key, err := ethcrypto.HexToECDSA(value)
	if err != nil {
		return nil, errors.New("invalid secp256k1 private key")
	}
	return key, nil
}

func (s *Signer) Address() common.Address {
	return s.address
}

// Sign returns r||s||v with v in {27, 28}.
func (s *Signer) Sign(ctx context.Context, digest common.Hash, semantics domain.SigningSemantics) ([]byte, error) {
	if s == nil || s.key == nil {
		return nil, fmt.Errorf("%w: signer not configured", domain.ErrSigning)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, err := crypto.SigningHash(digest, semantics)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	sig, err := ethcrypto.Sign(hash.Bytes(), s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	sig[64] += 27
	return sig, nil
}

// String prints the signer address only.
func (s *Signer) String() string {
	if s == nil {
		return "soft.Signer(<nil>)"
	}
	return "soft.Signer(" + s.address.Hex() + ")"
}

func (s *Signer) GoString() string {
	return s.String()
}
