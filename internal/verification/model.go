package verification

import (
	"time"

	"github.com/google/uuid"
)

// CodeTTL is how long a verification code stays valid after issue.
const CodeTTL = 10 * time.Minute

// Record is a one-time email verification code tied to a user.
// Multiple records may exist per user; only the most recently created
// unverified record is ever checked. Records are never deleted —
// superseded ones are expired in place.
type Record struct {
	ID        uuid.UUID `json:"id"         db:"id"`
	UserID    uuid.UUID `json:"user_id"    db:"user_id"`
	Email     string    `json:"email"      db:"email"`
	Code      string    `json:"-"          db:"otp"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Verified  bool      `json:"verified"   db:"verified"`
	Attempts  int       `json:"attempts"   db:"attempts"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
