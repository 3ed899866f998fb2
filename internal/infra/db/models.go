package db

import "time"

// IdentityBindingModel records that an external account (e.g. a YouTube
// channel id) controls an account address. Rows are maintained out of band.
type IdentityBindingModel struct {
	ID                string    `gorm:"type:uuid;primaryKey"`
	Provider          string    `gorm:"not null;uniqueIndex:idx_identity_binding"`
	ExternalAccountID string    `gorm:"not null;uniqueIndex:idx_identity_binding;index"`
	Address           string    `gorm:"type:char(42);not null;uniqueIndex:idx_identity_binding"`
	CreatedAt         time.Time `gorm:"not null"`
	RevokedAt         *time.Time
}

func (IdentityBindingModel) TableName() string {
	return "identity_bindings"
}
