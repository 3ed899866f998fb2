package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type ClaimKind string

const (
	ClaimAccountOwnership ClaimKind = "account_ownership"
	ClaimContentOwnership ClaimKind = "content_ownership"
	ClaimRoyaltyTransfer  ClaimKind = "royalty_transfer"
)

// ClaimKinds lists every claim kind in a stable order.
var ClaimKinds = []ClaimKind{
	ClaimAccountOwnership,
	ClaimContentOwnership,
	ClaimRoyaltyTransfer,
}

func (k ClaimKind) Valid() bool {
	switch k {
	case ClaimAccountOwnership, ClaimContentOwnership, ClaimRoyaltyTransfer:
		return true
	default:
		return false
	}
}

// Claim is the closed set of attestable claims. Only the three claim structs
// in this package implement it.
type Claim interface {
	Kind() ClaimKind
	Subject() common.Address
	Target() common.Address
	isClaim()
}

type AccountOwnershipClaim struct {
	SubjectAddress common.Address
	AssetName      string
	AssetSymbol    string
	MaxSupply      uint32
	TargetContract common.Address
}

func (AccountOwnershipClaim) Kind() ClaimKind { return ClaimAccountOwnership }

func (c AccountOwnershipClaim) Subject() common.Address { return c.SubjectAddress }

func (c AccountOwnershipClaim) Target() common.Address { return c.TargetContract }

func (AccountOwnershipClaim) isClaim() {}

type ContentOwnershipClaim struct {
	SubjectAddress     common.Address
	ContentURI         string
	ContentHash        common.Hash
	RepresentationURI  string
	RepresentationHash common.Hash
	TargetContract     common.Address
}

func (ContentOwnershipClaim) Kind() ClaimKind { return ClaimContentOwnership }

func (c ContentOwnershipClaim) Subject() common.Address { return c.SubjectAddress }

func (c ContentOwnershipClaim) Target() common.Address { return c.TargetContract }

func (ContentOwnershipClaim) isClaim() {}

type RoyaltyTransferClaim struct {
	SubjectAddress common.Address
	ContentHash    common.Hash
	Period         string
	Amount         *uint256.Int
	TokenAddress   common.Address
	TargetContract common.Address
}

func (RoyaltyTransferClaim) Kind() ClaimKind { return ClaimRoyaltyTransfer }

func (c RoyaltyTransferClaim) Subject() common.Address { return c.SubjectAddress }

func (c RoyaltyTransferClaim) Target() common.Address { return c.TargetContract }

func (RoyaltyTransferClaim) isClaim() {}
