package domain

import "context"

type VerifiedIdentity struct {
	Provider          string
	ExternalAccountID string
	DisplayName       string
	Handle            string
}

// IdentityVerifier resolves a bearer credential to the external account that
// owns it. Implementations fail closed with an *AuthError.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (VerifiedIdentity, error)
}
