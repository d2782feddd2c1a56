package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CertificatePending  = "pending"
	CertificateApproved = "approved"
	CertificateRejected = "rejected"
)

type Certificate struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_certificates_user_course" json:"user_id"`
	CourseID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_certificates_user_course;index" json:"course_id"`
	EnrollmentID    uuid.UUID  `gorm:"type:uuid;not null" json:"enrollment_id"`
	User            *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Course          *Course    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Status          string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	Number          *string    `gorm:"size:40;uniqueIndex" json:"number,omitempty"`
	AssessorID      *uuid.UUID `gorm:"type:uuid" json:"assessor_id,omitempty"`
	RejectionReason *string    `gorm:"type:text" json:"rejection_reason,omitempty"`
	RequestedAt     time.Time  `json:"requested_at"`
	IssuedAt        *time.Time `json:"issued_at,omitempty"`
}

func (c *Certificate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
