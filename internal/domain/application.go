// Package domain defines the persistence models for job applications and
// notifications. These types are mapped with GORM and form the core data
// layer of the recruiting backend.
package domain

import "time"

// Status is the closed set of lifecycle states for a job application.
// Modelling it as a named type keeps free-form strings out of the rest of
// the codebase; only the three constants below are valid.
type Status string

const (
	// StatusPending is the initial state of every submitted application.
	StatusPending Status = "pending"
	// StatusApproved marks an application accepted by a reviewer.
	StatusApproved Status = "approved"
	// StatusRejected marks an application declined by a reviewer.
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s is a reviewed (non-pending) state.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Application represents a single candidate's job-application record.
//
// Fields:
//   - ID: stable UUID primary key (char(36)), assigned at creation.
//   - FullName: candidate name as entered on the intake form.
//   - IDGame: in-game identifier, digits only. Duplicates are allowed:
//     the same candidate may apply more than once.
//   - Age: integer, validated to [18, 70] at intake.
//   - Phone: raw digit string as entered; display grouping is applied by
//     callers and never stored.
//   - Status: lifecycle state, always "pending" at creation.
//   - CreatedAt: set once at creation, immutable afterwards.
//   - UpdatedAt: bumped by GORM on every write, including status
//     transitions; conditional responses key on it.
//
// Applications are hard-deleted; there is no soft-delete marker. The only
// mutation after creation is the status transition.
type Application struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	FullName  string    `json:"full_name"  gorm:"type:varchar(255);not null"`
	IDGame    string    `json:"id_game"    gorm:"type:varchar(32);not null;index"`
	Age       int       `json:"age"        gorm:"not null;check:age BETWEEN 18 AND 70"`
	Phone     string    `json:"phone"      gorm:"type:varchar(32);not null"`
	Status    Status    `json:"status"     gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','approved','rejected');index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index"`
}

// TableName returns the database table name for Application.
func (Application) TableName() string { return "job_applications" }
