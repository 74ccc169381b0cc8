// Package models defines the persisted record types for the dashboard's
// relational store.
package models

import "time"

// UserProfile is the denormalized per-user cache row written on every login
// and role recomputation. It is a cache, not a source of truth: the identity
// provider's claims win on every request, and this row only exists so
// operators can see who has logged in and with what role.
type UserProfile struct {
	Username  string    `db:"username"`
	Role      string    `db:"role"`
	LastLogin time.Time `db:"last_login"`
}
