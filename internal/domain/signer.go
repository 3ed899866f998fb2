package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Signer holds the process signing key. The key never leaves the
// implementation; only the derived address is exposed.
type Signer interface {
	Address() common.Address
	Sign(ctx context.Context, digest common.Hash, semantics SigningSemantics) ([]byte, error)
}
