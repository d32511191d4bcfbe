package models

import "time"

// Class represents a class or section.
type Class struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	GradeLevel string    `db:"grade_level" json:"grade_level"`
	TeacherID  *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	Room       *string   `db:"room" json:"room,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	GradeLevel string
	TeacherID  string
	Search     string
	Page       int
	PageSize   int
}
