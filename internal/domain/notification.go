package domain

import "time"

// Notification type tags. The writer stamps each record with the event
// family that produced it.
const (
	// NotificationTypeJobApplication tags records produced by a new intake.
	NotificationTypeJobApplication = "job_application"
	// NotificationTypeGeneral tags records produced by review actions.
	NotificationTypeGeneral = "general"
)

// Notification is a durable, shared record describing a lifecycle event
// (application received or status changed). It is written exclusively by
// the notifier; consumers only toggle IsRead or delete records. The message
// text is composed once at write time and never edited.
type Notification struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Type      string    `json:"type"       gorm:"type:varchar(32);not null;index"`
	Message   string    `json:"message"    gorm:"type:text;not null"`
	IsRead    bool      `json:"is_read"    gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }
