package models

import "time"

// Document is an uploaded file's metadata. FilePath is relative to the storage root.
type Document struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	FileName   string    `db:"file_name" json:"file_name"`
	FilePath   string    `db:"file_path" json:"-"`
	MimeType   string    `db:"mime_type" json:"mime_type"`
	SizeBytes  int64     `db:"size_bytes" json:"size_bytes"`
	StudentID  *string   `db:"student_id" json:"student_id,omitempty"`
	UploadedBy string    `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// DocumentFilter scopes document listings.
type DocumentFilter struct {
	StudentID  string
	UploadedBy string
	Page       int
	PageSize   int
}
