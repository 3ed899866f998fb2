package abi

import (
	"fmt"

	"revix/internal/domain"
)

// Claim layouts mirror the verifier contracts' abi.encodePacked argument
// lists.
var (
	// assetName and assetSymbol are adjacent strings in the deployed
	// verifier; ("ab","c") and ("a","bc") pack identically.
	AccountOwnershipLayout = mustLayout(NewVerifierLayout("account_ownership",
		Field{Name: "subjectAddress", Type: Address},
		Field{Name: "assetName", Type: String},
		Field{Name: "assetSymbol", Type: String},
		Field{Name: "maxSupply", Type: Uint32},
		Field{Name: "targetContract", Type: Address},
	))
	ContentOwnershipLayout = mustLayout(NewLayout("content_ownership",
		Field{Name: "subjectAddress", Type: Address},
		Field{Name: "contentUri", Type: String},
		Field{Name: "contentHash", Type: Bytes32},
		Field{Name: "representationUri", Type: String},
		Field{Name: "representationHash", Type: Bytes32},
		Field{Name: "targetContract", Type: Address},
	))
	RoyaltyTransferLayout = mustLayout(NewLayout("royalty_transfer",
		Field{Name: "subjectAddress", Type: Address},
		Field{Name: "contentHash", Type: Bytes32},
		Field{Name: "period", Type: String},
		Field{Name: "amount", Type: Uint256},
		Field{Name: "tokenAddress", Type: Address},
		Field{Name: "targetContract", Type: Address},
	))
)

func mustLayout(l Layout, err error) Layout {
	if err != nil {
		panic(err)
	}
	return l
}

// LayoutFor returns the fixed layout of a claim kind.
func LayoutFor(kind domain.ClaimKind) (Layout, bool) {
	switch kind {
	case domain.ClaimAccountOwnership:
		return AccountOwnershipLayout, true
	case domain.ClaimContentOwnership:
		return ContentOwnershipLayout, true
	case domain.ClaimRoyaltyTransfer:
		return RoyaltyTransferLayout, true
	default:
		return Layout{}, false
	}
}

// Encoder is the canonical claim encoder. It is stateless.
type Encoder struct{}

func (Encoder) Encode(claim domain.Claim) ([]byte, error) {
	switch c := claim.(type) {
	case domain.AccountOwnershipClaim:
		return AccountOwnershipLayout.Pack(
			c.SubjectAddress,
			c.AssetName,
			c.AssetSymbol,
			c.MaxSupply,
			c.TargetContract,
		)
	case domain.ContentOwnershipClaim:
		return ContentOwnershipLayout.Pack(
			c.SubjectAddress,
			c.ContentURI,
			c.ContentHash,
			c.RepresentationURI,
			c.RepresentationHash,
			c.TargetContract,
		)
	case domain.RoyaltyTransferClaim:
		return RoyaltyTransferLayout.Pack(
			c.SubjectAddress,
			c.ContentHash,
			c.Period,
			c.Amount,
			c.TokenAddress,
			c.TargetContract,
		)
	default:
		return nil, fmt.Errorf("%w: unsupported claim %T", domain.ErrEncoding, claim)
	}
}
