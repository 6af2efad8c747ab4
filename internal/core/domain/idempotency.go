package domain

import "time"

// IdempotencyRecord caches the response of a mutating call keyed by
// (token, user). A replay within the validity window returns the stored
// response without re-executing the operation; RequestHash detects token
// reuse with a different payload.
type IdempotencyRecord struct {
	Token       string    `json:"token"`
	UserID      string    `json:"userID"`
	RequestHash string    `json:"requestHash"` // sha256 of the request body, hex
	StatusCode  int       `json:"statusCode"`
	ContentType string    `json:"contentType"`
	Response    []byte    `json:"response"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Expired reports whether the record is past its validity window.
func (r IdempotencyRecord) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}
