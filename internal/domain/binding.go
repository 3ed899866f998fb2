package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

type BindingStatus string

const (
	// BindingUnverified means the check ran in advisory mode and did not
	// compare the identity with the claim subject.
	BindingUnverified BindingStatus = "unverified"
	BindingVerified   BindingStatus = "verified"
	BindingRejected   BindingStatus = "rejected"
)

type BindingViolation struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type BindingDecision struct {
	Status     BindingStatus      `json:"status"`
	Violations []BindingViolation `json:"violations,omitempty"`
}

func (d BindingDecision) Allowed() bool {
	return d.Status != BindingRejected
}

// BindingChecker decides whether a verified identity may obtain an
// attestation for the claim's subject address.
type BindingChecker interface {
	Check(ctx context.Context, identity VerifiedIdentity, claim Claim) (BindingDecision, error)
}

// BindingRegistry lists the account addresses an external account has
// registered. It is read-only reference data.
type BindingRegistry interface {
	BoundAddresses(ctx context.Context, externalAccountID string) ([]common.Address, error)
}
