package dto

import (
	"time"

	commonDto "anoa.com/learnhub/pkg/dto"
)

type ReviewQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	commonDto.PageQuery
}

type RejectInput struct {
	Reason string `json:"reason" binding:"required,min=3,max=1000"`
}

// VerificationResponse is the public view of an issued certificate.
type VerificationResponse struct {
	Number      string    `json:"number"`
	Valid       bool      `json:"valid"`
	StudentName string    `json:"student_name"`
	CourseTitle string    `json:"course_title"`
	IssuedAt    time.Time `json:"issued_at"`
}
