package models

import "time"

// Teacher holds staff details for a teacher account.
type Teacher struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Subject   *string   `db:"subject" json:"subject,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherDetail joins the teacher row with its user.
type TeacherDetail struct {
	Teacher
	Username  string `db:"username" json:"username"`
	Email     string `db:"email" json:"email"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}
