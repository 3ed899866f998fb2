package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"revix/internal/domain"
)

const AnonymousProvider = "none"

// AnonymousGate accepts every request. It is used when the deployment runs
// without an identity provider.
type AnonymousGate struct{}

func (AnonymousGate) Verify(context.Context, string) (domain.VerifiedIdentity, error) {
	return domain.VerifiedIdentity{Provider: AnonymousProvider, ExternalAccountID: "anonymous"}, nil
}

type IssueAttestationRequest struct {
	Credential string
	Kind       domain.ClaimKind
	Params     domain.Params
}

// IssueAttestation runs one request through credential check, field
// validation, binding check, encoding, digest and signing. The first
// failing step ends the request.
type IssueAttestation struct {
	Gate     domain.IdentityVerifier
	Provider string
	Binding  domain.BindingChecker
	Encoder  ClaimEncoder
	Digest   Digester
	Signing  *SigningContext
	Metrics  Metrics
	Logger   *slog.Logger
	Now      func() time.Time
}

func (uc *IssueAttestation) Execute(ctx context.Context, req IssueAttestationRequest) (*domain.Attestation, error) {
	identity, err := uc.verify(ctx, req.Credential)
	if err != nil {
		return nil, err
	}

	claim, err := domain.ParseClaim(req.Kind, req.Params)
	if err != nil {
		return nil, err
	}

	decision, err := uc.checkBinding(ctx, identity, claim)
	if err != nil {
		return nil, err
	}

	packed, err := uc.Encoder.Encode(claim)
	if err != nil {
		if !errors.Is(err, domain.ErrEncoding) {
			err = fmt.Errorf("%w: %v", domain.ErrEncoding, err)
		}
		return nil, err
	}
	digest := uc.Digest.Digest(packed)

	sig, err := uc.Signing.Sign(ctx, claim.Kind(), digest)
	if err != nil {
		uc.logger().Error("attestation signing failed",
			"kind", string(claim.Kind()),
			"error", err,
		)
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.Issued(string(claim.Kind()))
	}
	uc.logger().Info("attestation issued",
		"kind", string(claim.Kind()),
		"account", identity.ExternalAccountID,
		"subject", claim.Subject().Hex(),
		"binding", string(decision.Status),
		"msg_hash", digest.Hex(),
	)
	return &domain.Attestation{
		Kind:      claim.Kind(),
		Digest:    digest,
		Signature: sig,
		Signer:    uc.Signing.Address(),
		Binding:   decision,
	}, nil
}

func (uc *IssueAttestation) verify(ctx context.Context, credential string) (domain.VerifiedIdentity, error) {
	if uc.Gate == nil {
		return domain.VerifiedIdentity{}, domain.ErrUnauthorized
	}
	start := uc.now()
	identity, err := uc.Gate.Verify(ctx, credential)
	if uc.Metrics != nil && uc.Provider != AnonymousProvider {
		uc.Metrics.ObserveIdentity(uc.Provider, err == nil, uc.now().Sub(start))
	}
	if err != nil {
		return domain.VerifiedIdentity{}, err
	}
	return identity, nil
}

func (uc *IssueAttestation) checkBinding(ctx context.Context, identity domain.VerifiedIdentity, claim domain.Claim) (domain.BindingDecision, error) {
	if uc.Binding == nil {
		return domain.BindingDecision{Status: domain.BindingUnverified}, nil
	}
	decision, err := uc.Binding.Check(ctx, identity, claim)
	if err != nil {
		return domain.BindingDecision{}, err
	}
	if !decision.Allowed() {
		uc.logger().Warn("identity binding rejected",
			"kind", string(claim.Kind()),
			"account", identity.ExternalAccountID,
			"subject", claim.Subject().Hex(),
			"violations", decision.Violations,
		)
		return decision, &BindingError{Decision: decision}
	}
	if decision.Status == domain.BindingUnverified {
		uc.logger().Debug("identity binding not verified",
			"kind", string(claim.Kind()),
			"account", identity.ExternalAccountID,
			"subject", claim.Subject().Hex(),
		)
	}
	return decision, nil
}

func (uc *IssueAttestation) logger() *slog.Logger {
	if uc.Logger == nil {
		return slog.Default()
	}
	return uc.Logger
}

func (uc *IssueAttestation) now() time.Time {
	if uc.Now == nil {
		return time.Now()
	}
	return uc.Now()
}

// BindingError carries the rejecting decision to the transport layer.
type BindingError struct {
	Decision domain.BindingDecision
}

func (e *BindingError) Error() string {
	if len(e.Decision.Violations) > 0 && e.Decision.Violations[0].Message != "" {
		return e.Decision.Violations[0].Message
	}
	return domain.ErrBindingRejected.Error()
}

func (e *BindingError) Unwrap() error { return domain.ErrBindingRejected }
