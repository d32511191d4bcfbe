package models

import "time"

// Parent holds contact details for a parent account.
type Parent struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Address   *string   `db:"address" json:"address,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ParentDetail joins the parent row with its user.
type ParentDetail struct {
	Parent
	Username  string `db:"username" json:"username"`
	Email     string `db:"email" json:"email"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}
