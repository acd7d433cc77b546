package models

import "time"

// College enumerates the institutions a student may belong to.
type College string

const (
	CollegeBMSIT College = "BMSIT&M"
	CollegeNitte College = "NITTE"
	CollegeBMSCE College = "BMSCE"
)

// Student represents a registered student keyed by enrollment number (USN).
// Students are immutable after signup: no profile edit, no delete.
type Student struct {
	USN          string    `db:"usn" json:"usn"`
	Name         string    `db:"name" json:"name"`
	College      College   `db:"college" json:"college"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
