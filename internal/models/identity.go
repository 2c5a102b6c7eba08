package models

import "time"

// Identity is the authenticated caller resolved by the session gate.
type Identity struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	// TokenID and ExpiresAt describe the session token, used for revocation.
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// IsZero reports whether no user is attached.
func (i Identity) IsZero() bool {
	return i.UserID == 0
}
