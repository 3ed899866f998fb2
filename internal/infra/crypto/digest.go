package crypto

import (
	"errors"
	"fmt"

	"revix/internal/domain"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the r||s||v form accepted by ecrecover.
const SignatureLength = 65

var ErrSignatureMismatch = errors.New("signature does not recover to expected signer")

type Service struct{}

// Digest is keccak256 over the packed claim bytes.
func (s *Service) Digest(packed []byte) common.Hash {
	return Digest(packed)
}

func Digest(packed []byte) common.Hash {
	return ethcrypto.Keccak256Hash(packed)
}

// SigningHash returns the 32 bytes the key is actually applied to.
func SigningHash(digest common.Hash, semantics domain.SigningSemantics) (common.Hash, error) {
	switch semantics {
	case domain.SemanticsRaw:
		return digest, nil
	case domain.SemanticsPersonal:
		return common.BytesToHash(accounts.TextHash(digest.Bytes())), nil
	default:
		return common.Hash{}, fmt.Errorf("unsupported signing semantics %q", semantics)
	}
}

// RecoverSigner returns the address that produced sig over digest. v may be
// 27/28 or 0/1.
func RecoverSigner(digest common.Hash, sig []byte, semantics domain.SigningSemantics) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", SignatureLength, len(sig))
	}
	hash, err := SigningHash(digest, semantics)
	if err != nil {
		return common.Address{}, err
	}
	normalized := append([]byte(nil), sig...)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	if normalized[64] > 1 {
		return common.Address{}, errors.New("invalid recovery id")
	}
	pub, err := ethcrypto.SigToPub(hash.Bytes(), normalized)
	if err != nil {
		return common.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}

func (s *Service) VerifySignature(digest common.Hash, sig []byte, semantics domain.SigningSemantics, expected common.Address) error {
	got, err := RecoverSigner(digest, sig, semantics)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("%w: recovered %s", ErrSignatureMismatch, got.Hex())
	}
	return nil
}
