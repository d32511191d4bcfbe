package models

import "time"

// RegistrationStatus moves once, from pending to approved or rejected.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationRejected:
		return true
	default:
		return false
	}
}

// RegistrationRequest is a parent-submitted enrollment application.
type RegistrationRequest struct {
	ID          string             `db:"id" json:"id"`
	StudentName string             `db:"student_name" json:"studentName"`
	StudentDOB  *time.Time         `db:"student_dob" json:"studentDob,omitempty"`
	GradeLevel  *string            `db:"grade_level" json:"gradeLevel,omitempty"`
	ParentName  string             `db:"parent_name" json:"parentName"`
	ParentEmail string             `db:"parent_email" json:"parentEmail"`
	ClassID     string             `db:"class_id" json:"classId"`
	Status      RegistrationStatus `db:"status" json:"status"`
	SubmittedAt time.Time          `db:"submitted_at" json:"submittedAt"`
	ProcessedAt *time.Time         `db:"processed_at" json:"processedAt,omitempty"`
}

// RegistrationFilter narrows the administrative listing.
type RegistrationFilter struct {
	Status *RegistrationStatus
}
