package models

import "time"

// Student is a learner record. ParentID links a parent account when one is known;
// ParentName and ParentEmail are kept either way.
type Student struct {
	ID                    string     `db:"id" json:"id"`
	UserID                *string    `db:"user_id" json:"user_id,omitempty"`
	FirstName             string     `db:"first_name" json:"first_name"`
	LastName              string     `db:"last_name" json:"last_name"`
	DateOfBirth           *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	GradeLevel            *string    `db:"grade_level" json:"grade_level,omitempty"`
	ClassID               *string    `db:"class_id" json:"class_id,omitempty"`
	ParentID              *string    `db:"parent_id" json:"parent_id"`
	ParentName            *string    `db:"parent_name" json:"parent_name,omitempty"`
	ParentEmail           *string    `db:"parent_email" json:"parent_email,omitempty"`
	RegistrationRequestID *string    `db:"registration_request_id" json:"registration_request_id,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search   string
	ClassID  string
	ParentID string
	Page     int
	PageSize int
}
