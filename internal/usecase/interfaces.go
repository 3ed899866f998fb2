package usecase

import (
	"time"

	"revix/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

type ClaimEncoder interface {
	Encode(claim domain.Claim) ([]byte, error)
}

type Digester interface {
	Digest(packed []byte) common.Hash
}

type Metrics interface {
	Issued(kind string)
	ObserveIdentity(provider string, ok bool, elapsed time.Duration)
}
