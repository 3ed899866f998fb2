package crypto

import (
	"errors"
	"testing"

	"revix/internal/domain"
	"revix/internal/infra/abi"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

func TestDigest_KnownVectors(t *testing.T) {
	cases := map[string]string{
		"":      "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		"hello": "0x1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8",
	}
	for in, want := range cases {
		if got := Digest([]byte(in)).Hex(); got != want {
			t.Fatalf("keccak(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestDigest_ClaimVectors(t *testing.T) {
	subject := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1")
	target := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb2")
	token := common.HexToAddress("0x2b5ad5c4795c026514f8317c7a215e218dccd6cf")
	hashA := common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111")
	hashB := common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222")

	cases := []struct {
		claim domain.Claim
		want  string
	}{
		{
			claim: domain.AccountOwnershipClaim{
				SubjectAddress: subject,
				AssetName:      "Demo",
				AssetSymbol:    "DEMO",
				MaxSupply:      1000,
				TargetContract: target,
			},
			want: "0x12ca3174dccdd86fc654d1058d4d980b215cadc318282bd1a3e55a95557da8f6",
		},
		{
			claim: domain.ContentOwnershipClaim{
				SubjectAddress:     subject,
				ContentURI:         "ipfs://content",
				ContentHash:        hashA,
				RepresentationURI:  "ipfs://nft",
				RepresentationHash: hashB,
				TargetContract:     target,
			},
			want: "0x48969e5e4d0a6089059bfcde613bc631a3e963ce9e5505c91455faf3e53af96b",
		},
		{
			claim: domain.RoyaltyTransferClaim{
				SubjectAddress: subject,
				ContentHash:    hashA,
				Period:         "2025-05",
				Amount:         uint256.NewInt(0),
				TokenAddress:   token,
				TargetContract: target,
			},
			want: "0x6b5920109bbb2f7d7c7cec4727b6f8c3b03f6d832f795e054c6d4dc59b2f417d",
		},
	}
	for _, tc := range cases {
		packed, err := abi.Encoder{}.Encode(tc.claim)
		if err != nil {
			t.Fatalf("%s: encode: %v", tc.claim.Kind(), err)
		}
		if got := Digest(packed).Hex(); got != tc.want {
			t.Fatalf("%s: digest %s, want %s", tc.claim.Kind(), got, tc.want)
		}
	}
}

func TestSigningHash(t *testing.T) {
	digest := common.HexToHash("0x12ca3174dccdd86fc654d1058d4d980b215cadc318282bd1a3e55a95557da8f6")
	raw, err := SigningHash(digest, domain.SemanticsRaw)
	if err != nil || raw != digest {
		t.Fatalf("raw semantics must sign the digest itself: %s %v", raw.Hex(), err)
	}
	personal, err := SigningHash(digest, domain.SemanticsPersonal)
	if err != nil {
		t.Fatalf("personal: %v", err)
	}
	if personal.Hex() != "0x8f50779bc3445afa11bb323d435c623bc992b155e3b37aefdd293666ba3d4c48" {
		t.Fatalf("unexpected personal hash %s", personal.Hex())
	}
	if _, err := SigningHash(digest, domain.SigningSemantics("eip712")); err == nil {
		t.Fatal("expected error for unknown semantics")
	}
}

func TestRecoverSigner(t *testing.T) {
	key, err := ethcrypto.HexToECDSA("0000000000000000000000000000000000000000000000000000000000000001")
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	want := common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf")
	digest := Digest([]byte("hello"))

	for _, semantics := range []domain.SigningSemantics{domain.SemanticsRaw, domain.SemanticsPersonal} {
		hash, err := SigningHash(digest, semantics)
		if err != nil {
			t.Fatalf("signing hash: %v", err)
		}
		sig, err := ethcrypto.Sign(hash.Bytes(), key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		sig[64] += 27

		svc := &Service{}
		if err := svc.VerifySignature(digest, sig, semantics, want); err != nil {
			t.Fatalf("%s: verify: %v", semantics, err)
		}
		other := domain.SemanticsRaw
		if semantics == domain.SemanticsRaw {
			other = domain.SemanticsPersonal
		}
		if err := svc.VerifySignature(digest, sig, other, want); !errors.Is(err, ErrSignatureMismatch) {
			t.Fatalf("%s: expected mismatch under %s, got %v", semantics, other, err)
		}
	}
}

func TestRecoverSigner_RejectsMalformed(t *testing.T) {
	digest := Digest([]byte("hello"))
	if _, err := RecoverSigner(digest, make([]byte, 64), domain.SemanticsRaw); err == nil {
		t.Fatal("expected length error")
	}
	sig := make([]byte, SignatureLength)
	sig[64] = 30
	if _, err := RecoverSigner(digest, sig, domain.SemanticsRaw); err == nil {
		t.Fatal("expected recovery id error")
	}
}
