package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Attestation is returned to the caller and never stored.
type Attestation struct {
	Kind      ClaimKind
	Digest    common.Hash
	Signature []byte
	Signer    common.Address
	Binding   BindingDecision
}

// SigningSemantics selects what the signing key is applied to. The two modes
// produce signatures that recover to different addresses on chain, so a
// deployment fixes one per claim kind.
type SigningSemantics string

const (
	// SemanticsRaw signs the packed-claim digest as is.
	SemanticsRaw SigningSemantics = "raw"
	// SemanticsPersonal signs keccak256("\x19Ethereum Signed Message:\n32" || digest).
	SemanticsPersonal SigningSemantics = "personal"
)

func ParseSigningSemantics(s string) (SigningSemantics, error) {
	switch SigningSemantics(strings.ToLower(strings.TrimSpace(s))) {
	case SemanticsRaw:
		return SemanticsRaw, nil
	case SemanticsPersonal, "":
		return SemanticsPersonal, nil
	default:
		return "", fmt.Errorf("unsupported signing semantics %q", s)
	}
}
