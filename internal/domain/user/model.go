package user

import "time"

// User is an API credential record. PasswordHash is a bcrypt digest; the
// plaintext password is never stored or logged.
type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}
