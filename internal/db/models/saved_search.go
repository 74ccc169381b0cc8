package models

import "time"

// SavedSearch is a named, owned filter preset. The query field is opaque to
// the store; it holds whatever serialized filter text the UI chose to save.
// Mutation and deletion are restricted to the owner or an admin.
type SavedSearch struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Query     string    `db:"query" json:"query"`
	Username  string    `db:"username" json:"username"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
