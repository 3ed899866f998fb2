package usecase

import (
	"context"
	"errors"
	"fmt"

	"revix/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

// SigningContext pairs the process signer with the semantics fixed for each
// claim kind. It is built once at startup and shared read-only.
type SigningContext struct {
	signer    domain.Signer
	semantics map[domain.ClaimKind]domain.SigningSemantics
}

// NewSigningContext resolves the default mode and any per-kind overrides.
// Unknown kinds or modes are rejected.
func NewSigningContext(signer domain.Signer, defaultMode string, byKind map[string]string) (*SigningContext, error) {
	if signer == nil {
		return nil, fmt.Errorf("%w: signer is required", domain.ErrSigning)
	}
	def, err := domain.ParseSigningSemantics(defaultMode)
	if err != nil {
		return nil, err
	}
	semantics := make(map[domain.ClaimKind]domain.SigningSemantics, len(domain.ClaimKinds))
	for _, kind := range domain.ClaimKinds {
		semantics[kind] = def
	}
	for rawKind, mode := range byKind {
		kind := domain.ClaimKind(rawKind)
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown claim kind %q in signing semantics", rawKind)
		}
		s, err := domain.ParseSigningSemantics(mode)
		if err != nil {
			return nil, err
		}
		semantics[kind] = s
	}
	return &SigningContext{signer: signer, semantics: semantics}, nil
}

func (s *SigningContext) Address() common.Address {
	return s.signer.Address()
}

func (s *SigningContext) SemanticsFor(kind domain.ClaimKind) domain.SigningSemantics {
	if mode, ok := s.semantics[kind]; ok {
		return mode
	}
	return domain.SemanticsPersonal
}

// Semantics returns a copy of the per-kind table keyed by kind name.
func (s *SigningContext) Semantics() map[string]string {
	out := make(map[string]string, len(s.semantics))
	for kind, mode := range s.semantics {
		out[string(kind)] = string(mode)
	}
	return out
}

func (s *SigningContext) Sign(ctx context.Context, kind domain.ClaimKind, digest common.Hash) ([]byte, error) {
	sig, err := s.signer.Sign(ctx, digest, s.SemanticsFor(kind))
	if err != nil {
		if errors.Is(err, domain.ErrSigning) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	return sig, nil
}
