package policyopa

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"revix/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const bindingPolicy = `package revix.binding

default allow = false

bound {
	input.bound_addresses[_] == input.claim.subject
}

deny[{"code": "SUBJECT_NOT_BOUND", "message": "subject address is not registered for this account"}] {
	not bound
}

deny[{"code": "ROYALTY_LIMIT", "message": "royalty amount above review threshold"}] {
	input.kind == "royalty_transfer"
	count(input.claim.amount) > 24
}

allow {
	count(deny) == 0
}

result = {"allow": allow, "deny": deny}
`

type staticRegistry map[string][]common.Address

func (s staticRegistry) BoundAddresses(_ context.Context, account string) ([]common.Address, error) {
	return s[account], nil
}

var (
	subject = common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf")
	other   = common.HexToAddress("0x2B5AD5c4795c026514f8317c7a215E218DcCD6cF")
)

func loadTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "binding.rego"), []byte(bindingPolicy), 0o644); err != nil {
		t.Fatalf("write rego: %v", err)
	}
	engine, err := NewEngineFromPath(context.Background(), dir)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func royalty(amount uint64) domain.RoyaltyTransferClaim {
	return domain.RoyaltyTransferClaim{
		SubjectAddress: subject,
		Period:         "2025-05",
		Amount:         uint256.NewInt(amount),
		TokenAddress:   other,
		TargetContract: other,
	}
}

func TestChecker_AllowsBoundSubject(t *testing.T) {
	checker := NewChecker(loadTestEngine(t), staticRegistry{"UC1": {subject}})
	d, err := checker.Check(context.Background(), domain.VerifiedIdentity{Provider: "youtube", ExternalAccountID: "UC1"}, royalty(10))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if d.Status != domain.BindingVerified {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestChecker_DeniesUnboundSubject(t *testing.T) {
	checker := NewChecker(loadTestEngine(t), staticRegistry{"UC1": {other}})
	d, err := checker.Check(context.Background(), domain.VerifiedIdentity{ExternalAccountID: "UC1"}, royalty(10))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if d.Status != domain.BindingRejected || d.Allowed() {
		t.Fatalf("expected rejection, got %+v", d)
	}
	if len(d.Violations) != 1 || d.Violations[0].Code != "SUBJECT_NOT_BOUND" {
		t.Fatalf("unexpected violations %+v", d.Violations)
	}
}

func TestEngine_Deterministic(t *testing.T) {
	engine := loadTestEngine(t)
	input := Input{
		Kind:           "royalty_transfer",
		Claim:          map[string]string{"subject": "0xabc", "amount": "1000000000000000000000000000"},
		BoundAddresses: []string{},
	}
	first, err := engine.Evaluate(context.Background(), input)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	second, err := engine.Evaluate(context.Background(), input)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected deterministic evaluation")
	}
	if first.Allow || len(first.Deny) != 2 {
		t.Fatalf("unexpected result %+v", first)
	}
	if first.Deny[0].Code != "ROYALTY_LIMIT" || first.Deny[1].Code != "SUBJECT_NOT_BOUND" {
		t.Fatalf("deny list must be sorted by code: %+v", first.Deny)
	}
}

func TestEngine_RejectsForbiddenBuiltins(t *testing.T) {
	module := `package revix.binding

result = {"allow": true, "deny": []} {
	http.send({"method": "GET", "url": "http://example.com"})
}
`
	if _, err := NewEngineFromModule(context.Background(), "bad.rego", module); err == nil {
		t.Fatal("expected forbidden builtin error")
	}
}

func TestClaimDocument(t *testing.T) {
	doc := claimDocument(royalty(1500))
	if doc["subject"] != "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf" {
		t.Fatalf("unexpected subject %s", doc["subject"])
	}
	if doc["amount"] != "1500" || doc["period"] != "2025-05" {
		t.Fatalf("unexpected document %v", doc)
	}
}

func TestShippedPolicy(t *testing.T) {
	engine, err := NewEngineFromPath(context.Background(), "../../../policies")
	if err != nil {
		t.Fatalf("load shipped policy: %v", err)
	}
	checker := NewChecker(engine, staticRegistry{"UC1": {subject}})

	d, err := checker.Check(context.Background(), domain.VerifiedIdentity{ExternalAccountID: "UC1"}, royalty(1))
	if err != nil || d.Status != domain.BindingVerified {
		t.Fatalf("expected verified, got %+v %v", d, err)
	}
	d, err = checker.Check(context.Background(), domain.VerifiedIdentity{ExternalAccountID: "UC2"}, royalty(1))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if d.Status != domain.BindingRejected || d.Violations[0].Code != "NO_BINDINGS" {
		t.Fatalf("unexpected decision %+v", d)
	}
}
