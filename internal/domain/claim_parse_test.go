package domain

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

const (
	testSubject  = "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"
	testContract = "0x2b5ad5c4795c026514f8317c7a215e218dccd6cf"
	testHashA    = "0x" + "11111111111111111111111111111111" + "11111111111111111111111111111111"
	testHashB    = "0x" + "22222222222222222222222222222222" + "22222222222222222222222222222222"
)

func validParams(kind ClaimKind) url.Values {
	v := url.Values{}
	switch kind {
	case ClaimAccountOwnership:
		v.Set("subjectAddress", testSubject)
		v.Set("assetName", "Demo")
		v.Set("assetSymbol", "DEMO")
		v.Set("maxSupply", "1000")
		v.Set("targetContract", testContract)
	case ClaimContentOwnership:
		v.Set("subjectAddress", testSubject)
		v.Set("contentUri", "ipfs://content")
		v.Set("contentHash", testHashA)
		v.Set("representationUri", "ipfs://nft")
		v.Set("representationHash", testHashB)
		v.Set("targetContract", testContract)
	case ClaimRoyaltyTransfer:
		v.Set("subjectAddress", testSubject)
		v.Set("contentHash", testHashA)
		v.Set("period", "2025-05")
		v.Set("amount", "1500000000000000000")
		v.Set("tokenAddress", testContract)
		v.Set("targetContract", testContract)
	}
	return v
}

func TestParseClaim_Valid(t *testing.T) {
	for _, kind := range ClaimKinds {
		t.Run(string(kind), func(t *testing.T) {
			claim, err := ParseClaim(kind, validParams(kind))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if claim.Kind() != kind {
				t.Fatalf("unexpected kind: %s", claim.Kind())
			}
			if claim.Subject().Hex() != testSubject {
				t.Fatalf("unexpected subject: %s", claim.Subject().Hex())
			}
		})
	}
}

func TestParseClaim_EachFieldRequired(t *testing.T) {
	for _, kind := range ClaimKinds {
		for _, p := range ClaimParams(kind) {
			t.Run(string(kind)+"/"+p.Name, func(t *testing.T) {
				params := validParams(kind)
				params.Del(p.Name)
				claim, err := ParseClaim(kind, params)
				if err == nil {
					t.Fatalf("expected validation error, got claim %#v", claim)
				}
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				var verr *ValidationError
				if !errors.As(err, &verr) || verr.Reason != ReasonMissing {
					t.Fatalf("expected missing reason, got %v", err)
				}
				if len(verr.Fields) != 1 || verr.Fields[0] != p.Name {
					t.Fatalf("unexpected fields: %v", verr.Fields)
				}
			})
		}
	}
}

func TestParseClaim_ReportsAllMissing(t *testing.T) {
	_, err := ParseClaim(ClaimAccountOwnership, url.Values{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields) != 5 {
		t.Fatalf("expected five missing fields, got %v", verr.Fields)
	}
	if !strings.HasPrefix(verr.Error(), "missing params: subjectAddress") {
		t.Fatalf("unexpected message: %s", verr.Error())
	}
}

func TestParseClaim_LegacyAliases(t *testing.T) {
	params := url.Values{}
	params.Set("creator", testSubject)
	params.Set("ipHash", testHashA)
	params.Set("month", "2025-05")
	params.Set("amount", "10")
	params.Set("token", testContract)
	params.Set("contract", testContract)

	claim, err := ParseClaim(ClaimRoyaltyTransfer, params)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	royalty := claim.(RoyaltyTransferClaim)
	if royalty.Period != "2025-05" || royalty.Amount.Uint64() != 10 {
		t.Fatalf("unexpected claim: %#v", royalty)
	}
}

func TestParseClaim_ZeroAmountAccepted(t *testing.T) {
	for _, amount := range []string{"0", "0x0"} {
		params := validParams(ClaimRoyaltyTransfer)
		params.Set("amount", amount)
		claim, err := ParseClaim(ClaimRoyaltyTransfer, params)
		if err != nil {
			t.Fatalf("amount %q rejected: %v", amount, err)
		}
		if !claim.(RoyaltyTransferClaim).Amount.IsZero() {
			t.Fatalf("amount %q: expected zero", amount)
		}
	}
}

func TestParseClaim_ZeroMaxSupplyAccepted(t *testing.T) {
	params := validParams(ClaimAccountOwnership)
	params.Set("maxSupply", "0")
	if _, err := ParseClaim(ClaimAccountOwnership, params); err != nil {
		t.Fatalf("maxSupply 0 rejected: %v", err)
	}
}

func TestParseClaim_MaxSupplyHex(t *testing.T) {
	for raw, want := range map[string]uint32{"0x3e8": 1000, "0X3E8": 1000, "0xffffffff": 4294967295} {
		params := validParams(ClaimAccountOwnership)
		params.Set("maxSupply", raw)
		claim, err := ParseClaim(ClaimAccountOwnership, params)
		if err != nil {
			t.Fatalf("maxSupply %q rejected: %v", raw, err)
		}
		if got := claim.(AccountOwnershipClaim).MaxSupply; got != want {
			t.Fatalf("maxSupply %q: expected %d, got %d", raw, want, got)
		}
	}
}

func TestParseClaim_InvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		kind  ClaimKind
		field string
		value string
	}{
		{"short address", ClaimAccountOwnership, "subjectAddress", "0x1234"},
		{"bad checksum", ClaimAccountOwnership, "subjectAddress", "0x7e5F4552091A69125d5DfCb7b8C2659029395Bdf"},
		{"maxSupply overflow", ClaimAccountOwnership, "maxSupply", "4294967296"},
		{"maxSupply negative", ClaimAccountOwnership, "maxSupply", "-1"},
		{"maxSupply hex overflow", ClaimAccountOwnership, "maxSupply", "0x100000000"},
		{"maxSupply empty hex", ClaimAccountOwnership, "maxSupply", "0x"},
		{"maxSupply plus sign", ClaimAccountOwnership, "maxSupply", "+7"},
		{"hash 31 bytes", ClaimContentOwnership, "contentHash", "0x" + strings.Repeat("ab", 31)},
		{"hash 33 bytes", ClaimContentOwnership, "representationHash", "0x" + strings.Repeat("ab", 33)},
		{"hash no prefix", ClaimContentOwnership, "contentHash", strings.Repeat("ab", 32)},
		{"amount negative", ClaimRoyaltyTransfer, "amount", "-5"},
		{"amount plus sign", ClaimRoyaltyTransfer, "amount", "+5"},
		{"amount overflow", ClaimRoyaltyTransfer, "amount", "0x1" + strings.Repeat("0", 64)},
		{"amount garbage", ClaimRoyaltyTransfer, "amount", "12abc"},
		{"token address", ClaimRoyaltyTransfer, "tokenAddress", "not-an-address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams(tc.kind)
			params.Set(tc.field, tc.value)
			_, err := ParseClaim(tc.kind, params)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Reason != ReasonInvalid || verr.Fields[0] != tc.field {
				t.Fatalf("unexpected error: %v", verr)
			}
		})
	}
}

func TestParseAddress_PrefixOptional(t *testing.T) {
	for _, raw := range []string{
		"0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf",
		"7E5F4552091A69125d5DfCb7b8C2659029395Bdf",
		"7e5f4552091a69125d5dfcb7b8c2659029395bdf",
	} {
		addr, err := ParseAddress("subjectAddress", raw)
		if err != nil {
			t.Fatalf("%s rejected: %v", raw, err)
		}
		if addr.Hex() != testSubject {
			t.Fatalf("%s: unexpected address %s", raw, addr.Hex())
		}
	}
	if _, err := ParseAddress("subjectAddress", "7e5F4552091A69125d5DfCb7b8C2659029395Bdf"); err == nil {
		t.Fatal("expected checksum error for bare mixed-case input")
	}
}

func TestParseUint256_MaxValue(t *testing.T) {
	v, err := ParseUint256("amount", "0x"+strings.Repeat("f", 64))
	if err != nil {
		t.Fatalf("parse max: %v", err)
	}
	if v.BitLen() != 256 {
		t.Fatalf("expected 256 bits, got %d", v.BitLen())
	}
}

func TestParseClaim_UnknownKind(t *testing.T) {
	if _, err := ParseClaim(ClaimKind("mint"), url.Values{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
