package domain

import "time"

// Credentials are the OAuth tokens of one seller account.
type Credentials struct {
	UserID       int64     `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"` // seconds
	LastUpdate   time.Time `json:"last_update"`
}

// ExpiresAt returns when the access token stops being valid.
func (c *Credentials) ExpiresAt() time.Time {
	return c.LastUpdate.Add(time.Duration(c.ExpiresIn) * time.Second)
}

// Expired reports whether the token is expired or within buffer of expiring.
func (c *Credentials) Expired(now time.Time, buffer time.Duration) bool {
	return !now.Add(buffer).Before(c.ExpiresAt())
}
