package policyopa

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"revix/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

// Checker runs the binding policy. The registry, when set, supplies
// bound_addresses; otherwise the policy sees an empty list.
type Checker struct {
	engine   *Engine
	registry domain.BindingRegistry
}

func NewChecker(engine *Engine, registry domain.BindingRegistry) *Checker {
	return &Checker{engine: engine, registry: registry}
}

func (c *Checker) Check(ctx context.Context, identity domain.VerifiedIdentity, claim domain.Claim) (domain.BindingDecision, error) {
	var bound []common.Address
	if c.registry != nil {
		var err error
		bound, err = c.registry.BoundAddresses(ctx, identity.ExternalAccountID)
		if err != nil {
			return domain.BindingDecision{}, fmt.Errorf("binding registry: %w", err)
		}
	}
	input := Input{
		Kind: string(claim.Kind()),
		Identity: IdentityInput{
			Provider:          identity.Provider,
			ExternalAccountID: identity.ExternalAccountID,
			DisplayName:       identity.DisplayName,
			Handle:            identity.Handle,
		},
		Claim:          claimDocument(claim),
		BoundAddresses: make([]string, 0, len(bound)),
	}
	for _, addr := range bound {
		input.BoundAddresses = append(input.BoundAddresses, lowerHex(addr))
	}
	result, err := c.engine.Evaluate(ctx, input)
	if err != nil {
		return domain.BindingDecision{}, fmt.Errorf("binding policy: %w", err)
	}
	if result.Allow && len(result.Deny) == 0 {
		return domain.BindingDecision{Status: domain.BindingVerified}, nil
	}
	violations := result.Deny
	if len(violations) == 0 {
		violations = []domain.BindingViolation{{Code: "POLICY_DENIED"}}
	}
	return domain.BindingDecision{Status: domain.BindingRejected, Violations: violations}, nil
}

// claimDocument renders the claim with lowercase hex addresses and decimal
// amounts so policies can compare strings directly.
func claimDocument(claim domain.Claim) map[string]string {
	doc := map[string]string{
		"subject": lowerHex(claim.Subject()),
		"target":  lowerHex(claim.Target()),
	}
	switch c := claim.(type) {
	case domain.AccountOwnershipClaim:
		doc["asset_name"] = c.AssetName
		doc["asset_symbol"] = c.AssetSymbol
		doc["max_supply"] = strconv.FormatUint(uint64(c.MaxSupply), 10)
	case domain.ContentOwnershipClaim:
		doc["content_uri"] = c.ContentURI
		doc["content_hash"] = c.ContentHash.Hex()
		doc["representation_uri"] = c.RepresentationURI
		doc["representation_hash"] = c.RepresentationHash.Hex()
	case domain.RoyaltyTransferClaim:
		doc["content_hash"] = c.ContentHash.Hex()
		doc["period"] = c.Period
		if c.Amount != nil {
			doc["amount"] = c.Amount.Dec()
		}
		doc["token"] = lowerHex(c.TokenAddress)
	}
	return doc
}

func lowerHex(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}
