package models

import "time"

// Admin is a provisioned reviewer account. Immutable after creation;
// uniqueness is enforced on AdminID.
type Admin struct {
	ID        string    `db:"id" json:"id"`
	AdminID   string    `db:"admin_id" json:"admin_id"`
	Name      string    `db:"name" json:"name"`
	PassHash  string    `db:"pass_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
