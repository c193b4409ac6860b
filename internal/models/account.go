package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is the common surface of the two account kinds. The auth
// guard and account service work against this rather than concrete types.
type Account interface {
	AccountID() uuid.UUID
	AccountEmail() string
	AccountName() string
	PasswordHash() string
	SecretChangedAt() time.Time
	ModelName() string
}
