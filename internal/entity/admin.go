package entity

import "time"

// Admin represents the admins table.
type Admin struct {
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
