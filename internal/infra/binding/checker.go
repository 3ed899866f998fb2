// Package binding decides whether a verified external account may obtain an
// attestation for a claim's subject address.
package binding

import (
	"context"
	"errors"
	"fmt"

	"revix/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

const (
	CodeSubjectNotBound = "SUBJECT_NOT_BOUND"
	CodeNoBindings      = "NO_BINDINGS"
)

// Advisory allows every claim and marks the decision unverified. It matches
// a service that trusts the caller to pair identity and subject correctly.
type Advisory struct{}

func (Advisory) Check(context.Context, domain.VerifiedIdentity, domain.Claim) (domain.BindingDecision, error) {
	return domain.BindingDecision{Status: domain.BindingUnverified}, nil
}

// Registry allows a claim only when the registry lists its subject address
// for the verified account.
type Registry struct {
	registry domain.BindingRegistry
}

func NewRegistry(registry domain.BindingRegistry) (*Registry, error) {
	if registry == nil {
		return nil, errors.New("binding registry is required")
	}
	return &Registry{registry: registry}, nil
}

func (r *Registry) Check(ctx context.Context, identity domain.VerifiedIdentity, claim domain.Claim) (domain.BindingDecision, error) {
	bound, err := r.registry.BoundAddresses(ctx, identity.ExternalAccountID)
	if err != nil {
		return domain.BindingDecision{}, fmt.Errorf("binding registry: %w", err)
	}
	return decide(bound, claim.Subject()), nil
}

func decide(bound []common.Address, subject common.Address) domain.BindingDecision {
	if len(bound) == 0 {
		return domain.BindingDecision{
			Status: domain.BindingRejected,
			Violations: []domain.BindingViolation{{
				Code:    CodeNoBindings,
				Message: "no addresses are registered for this account",
			}},
		}
	}
	for _, addr := range bound {
		if addr == subject {
			return domain.BindingDecision{Status: domain.BindingVerified}
		}
	}
	return domain.BindingDecision{
		Status: domain.BindingRejected,
		Violations: []domain.BindingViolation{{
			Code:    CodeSubjectNotBound,
			Message: "subject address is not registered for this account",
		}},
	}
}
