package models

import "time"

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	StudentID    string     `db:"student_id" json:"student_id"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserSecret stores the sealed upstream LMS token for a user.
type UserSecret struct {
	UserID           string    `db:"user_id"`
	UpstreamTokenEnc []byte    `db:"upstream_token_enc"`
	UpdatedAt        time.Time `db:"updated_at"`
}
