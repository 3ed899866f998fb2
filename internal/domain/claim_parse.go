package domain

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Params is the read side of url.Values.
type Params interface {
	Get(key string) string
}

// Param describes one request field. Aliases are the legacy dashboard names,
// consulted only when Name is absent.
type Param struct {
	Name    string
	Aliases []string
}

var claimParams = map[ClaimKind][]Param{
	ClaimAccountOwnership: {
		{Name: "subjectAddress", Aliases: []string{"creator"}},
		{Name: "assetName", Aliases: []string{"name"}},
		{Name: "assetSymbol", Aliases: []string{"symbol"}},
		{Name: "maxSupply"},
		{Name: "targetContract", Aliases: []string{"contract"}},
	},
	ClaimContentOwnership: {
		{Name: "subjectAddress", Aliases: []string{"creator"}},
		{Name: "contentUri", Aliases: []string{"ipUri"}},
		{Name: "contentHash", Aliases: []string{"ipHash"}},
		{Name: "representationUri", Aliases: []string{"nftUri"}},
		{Name: "representationHash", Aliases: []string{"nftHash"}},
		{Name: "targetContract", Aliases: []string{"contract"}},
	},
	ClaimRoyaltyTransfer: {
		{Name: "subjectAddress", Aliases: []string{"creator"}},
		{Name: "contentHash", Aliases: []string{"ipHash"}},
		{Name: "period", Aliases: []string{"month"}},
		{Name: "amount"},
		{Name: "tokenAddress", Aliases: []string{"token"}},
		{Name: "targetContract", Aliases: []string{"contract"}},
	},
}

// ClaimParams returns the ordered request fields for kind.
func ClaimParams(kind ClaimKind) []Param {
	params := claimParams[kind]
	out := make([]Param, len(params))
	copy(out, params)
	return out
}

// ParseClaim validates raw request parameters and builds the typed claim.
// Missing fields are reported together, in protocol order, before any value
// is parsed.
func ParseClaim(kind ClaimKind, params Params) (Claim, error) {
	fields, ok := claimParams[kind]
	if !ok {
		return nil, invalidParam("kind", "unsupported claim kind")
	}
	values := make(map[string]string, len(fields))
	var missing []string
	for _, p := range fields {
		v := lookupParam(params, p)
		if v == "" {
			missing = append(missing, p.Name)
			continue
		}
		values[p.Name] = v
	}
	if len(missing) > 0 {
		return nil, missingParams(missing...)
	}

	switch kind {
	case ClaimAccountOwnership:
		return parseAccountOwnership(values)
	case ClaimContentOwnership:
		return parseContentOwnership(values)
	default:
		return parseRoyaltyTransfer(values)
	}
}

func lookupParam(params Params, p Param) string {
	if params == nil {
		return ""
	}
	if v := params.Get(p.Name); v != "" {
		return v
	}
	for _, alias := range p.Aliases {
		if v := params.Get(alias); v != "" {
			return v
		}
	}
	return ""
}

func parseAccountOwnership(v map[string]string) (Claim, error) {
	subject, err := ParseAddress("subjectAddress", v["subjectAddress"])
	if err != nil {
		return nil, err
	}
	maxSupply, err := ParseUint32("maxSupply", v["maxSupply"])
	if err != nil {
		return nil, err
	}
	target, err := ParseAddress("targetContract", v["targetContract"])
	if err != nil {
		return nil, err
	}
	return AccountOwnershipClaim{
		SubjectAddress: subject,
		AssetName:      v["assetName"],
		AssetSymbol:    v["assetSymbol"],
		MaxSupply:      maxSupply,
		TargetContract: target,
	}, nil
}

func parseContentOwnership(v map[string]string) (Claim, error) {
	subject, err := ParseAddress("subjectAddress", v["subjectAddress"])
	if err != nil {
		return nil, err
	}
	contentHash, err := ParseHash32("contentHash", v["contentHash"])
	if err != nil {
		return nil, err
	}
	representationHash, err := ParseHash32("representationHash", v["representationHash"])
	if err != nil {
		return nil, err
	}
	target, err := ParseAddress("targetContract", v["targetContract"])
	if err != nil {
		return nil, err
	}
	return ContentOwnershipClaim{
		SubjectAddress:     subject,
		ContentURI:         v["contentUri"],
		ContentHash:        contentHash,
		RepresentationURI:  v["representationUri"],
		RepresentationHash: representationHash,
		TargetContract:     target,
	}, nil
}

func parseRoyaltyTransfer(v map[string]string) (Claim, error) {
	subject, err := ParseAddress("subjectAddress", v["subjectAddress"])
	if err != nil {
		return nil, err
	}
	contentHash, err := ParseHash32("contentHash", v["contentHash"])
	if err != nil {
		return nil, err
	}
	amount, err := ParseUint256("amount", v["amount"])
	if err != nil {
		return nil, err
	}
	token, err := ParseAddress("tokenAddress", v["tokenAddress"])
	if err != nil {
		return nil, err
	}
	target, err := ParseAddress("targetContract", v["targetContract"])
	if err != nil {
		return nil, err
	}
	return RoyaltyTransferClaim{
		SubjectAddress: subject,
		ContentHash:    contentHash,
		Period:         v["period"],
		Amount:         amount,
		TokenAddress:   token,
		TargetContract: target,
	}, nil
}

// ParseAddress accepts a 20-byte hex account address with or without the 0x
// prefix. Mixed-case input must carry a valid EIP-55 checksum.
func ParseAddress(field, raw string) (common.Address, error) {
	s := strings.TrimSpace(raw)
	if !common.IsHexAddress(s) {
		return common.Address{}, invalidParam(field, "not a 20-byte hex address")
	}
	addr := common.HexToAddress(s)
	body := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if body != strings.ToLower(body) && body != strings.ToUpper(body) {
		if addr.Hex()[2:] != body {
			return common.Address{}, invalidParam(field, "bad address checksum")
		}
	}
	return addr, nil
}

// ParseHash32 accepts exactly 32 bytes of 0x-prefixed hex.
func ParseHash32(field, raw string) (common.Hash, error) {
	b, err := hexutil.Decode(strings.TrimSpace(raw))
	if err != nil {
		return common.Hash{}, invalidParam(field, "not 0x-prefixed hex")
	}
	if len(b) != common.HashLength {
		return common.Hash{}, invalidParam(field, "must be exactly 32 bytes")
	}
	return common.BytesToHash(b), nil
}

// ParseUint32 accepts a decimal or 0x-prefixed hex unsigned integer that fits
// in 32 bits.
func ParseUint32(field, raw string) (uint32, error) {
	s, base := numberBase(strings.TrimSpace(raw))
	if s == "" || strings.HasPrefix(s, "+") {
		return 0, invalidParam(field, "not a uint32")
	}
	n, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, invalidParam(field, "not a uint32")
	}
	return uint32(n), nil
}

func numberBase(s string) (string, int) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:], 16
	}
	return s, 10
}

// ParseUint256 accepts a decimal or 0x-prefixed hex unsigned integer that fits
// in 256 bits. Zero is valid.
func ParseUint256(field, raw string) (*uint256.Int, error) {
	s, base := numberBase(strings.TrimSpace(raw))
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return nil, invalidParam(field, "not an unsigned integer")
	}
	b, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, invalidParam(field, "not an unsigned integer")
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, invalidParam(field, "exceeds uint256")
	}
	return v, nil
}
