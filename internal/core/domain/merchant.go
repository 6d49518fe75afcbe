package domain

import (
	"time"

	"github.com/google/uuid"
)

// Merchant is a business accepting payments through the gateway. A user of
// role RoleMerchant owns at most one Merchant row.
type Merchant struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	BusinessName  string
	BusinessEmail string
	Website       *string
	WebhookURL    *string
	WebhookSecret string // 32 random bytes, hex-encoded
	CreatedAt     time.Time
}

// ApiKey is a merchant credential pair: a public key_id and the bcrypt hash
// of a key_secret that is returned to the caller exactly once, at creation.
type ApiKey struct {
	KeyID         string
	KeySecretHash string
	MerchantID    uuid.UUID
	Label         string
	Active        bool
	CreatedAt     time.Time
	LastUsedAt    *time.Time
}
