package gcpsm

import (
	"context"
	"errors"
	"testing"
)

type fakeSecrets map[string][]byte

func (f fakeSecrets) AccessSecret(_ context.Context, id string) ([]byte, error) {
	v, ok := f[id]
	if !ok {
		return nil, errors.New("status 404")
	}
	return v, nil
}

func TestSource_Load(t *testing.T) {
	src, err := NewSource(fakeSecrets{
		"revix-signing": []byte("0x0000000000000000000000000000000000000000000000000000000000000001\n"),
	}, "revix-signing")
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	signer, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if signer.Address().Hex() != "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf" {
		t.Fatalf("unexpected address %s", signer.Address().Hex())
	}
}

func TestSource_LoadRejectsBadPayload(t *testing.T) {
	src, err := NewSource(fakeSecrets{"revix-signing": []byte("not-a-key")}, "revix-signing")
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	if _, err := src.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
