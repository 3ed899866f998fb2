package db

import (
	"context"
	"strings"
	"time"

	"revix/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BindingRepository serves the identity_bindings table as a binding
// registry.
type BindingRepository struct {
	db       *gorm.DB
	provider string
}

func NewBindingRepository(db *gorm.DB, provider string) *BindingRepository {
	return &BindingRepository{db: db, provider: provider}
}

func (r *BindingRepository) BoundAddresses(ctx context.Context, externalAccountID string) ([]common.Address, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []IdentityBindingModel
	err := r.db.WithContext(ctx).
		Where("provider = ? AND external_account_id = ? AND revoked_at IS NULL", r.provider, externalAccountID).
		Order("address ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]common.Address, 0, len(models))
	for _, m := range models {
		if !common.IsHexAddress(m.Address) {
			continue
		}
		out = append(out, common.HexToAddress(m.Address))
	}
	return out, nil
}

// Bind inserts a binding. It is used by tests and operator tooling; the
// request path only reads.
func (r *BindingRepository) Bind(ctx context.Context, externalAccountID string, addr common.Address, now time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := newBindingModel(r.provider, externalAccountID, addr, now)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Addresses are stored lowercase so lookups and revokes ignore checksum case.
func newBindingModel(provider, externalAccountID string, addr common.Address, now time.Time) IdentityBindingModel {
	return IdentityBindingModel{
		ID:                uuid.NewString(),
		Provider:          provider,
		ExternalAccountID: externalAccountID,
		Address:           strings.ToLower(addr.Hex()),
		CreatedAt:         now.UTC(),
	}
}

func (r *BindingRepository) Revoke(ctx context.Context, externalAccountID string, addr common.Address, now time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).
		Model(&IdentityBindingModel{}).
		Where("provider = ? AND external_account_id = ? AND address = ? AND revoked_at IS NULL",
			r.provider, externalAccountID, strings.ToLower(addr.Hex())).
		Update("revoked_at", now.UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
