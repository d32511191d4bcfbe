package dto

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	FirstName   string  `json:"first_name" validate:"required,max=100"`
	LastName    string  `json:"last_name" validate:"max=100"`
	DateOfBirth string  `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	GradeLevel  *string `json:"grade_level" validate:"omitempty,max=20"`
	ClassID     *string `json:"class_id" validate:"omitempty,uuid"`
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid"`
	ParentName  *string `json:"parent_name" validate:"omitempty,max=200"`
	ParentEmail *string `json:"parent_email" validate:"omitempty,email"`
}

// UpdateStudentRequest replaces the editable student fields.
type UpdateStudentRequest = CreateStudentRequest

// ClassRequest creates or replaces a class.
type ClassRequest struct {
	Name       string  `json:"name" validate:"required,max=100"`
	GradeLevel string  `json:"grade_level" validate:"required,max=20"`
	TeacherID  *string `json:"teacher_id" validate:"omitempty,uuid"`
	Room       *string `json:"room" validate:"omitempty,max=50"`
}

// UpdateTeacherRequest edits teacher details.
type UpdateTeacherRequest struct {
	Subject *string `json:"subject" validate:"omitempty,max=100"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
}

// RecordAttendanceRequest upserts one student's status for a date.
type RecordAttendanceRequest struct {
	StudentID string  `json:"student_id" validate:"required,uuid"`
	ClassID   *string `json:"class_id" validate:"omitempty,uuid"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string  `json:"status" validate:"required,oneof=present absent late excused"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

// SendMessageRequest posts a direct message.
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,uuid"`
	Subject     string `json:"subject" validate:"required,max=200"`
	Body        string `json:"body" validate:"required,max=10000"`
}

// CreateSchoolUpdateRequest publishes an update.
type CreateSchoolUpdateRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

// UploadDocumentRequest carries multipart form fields other than the file itself.
type UploadDocumentRequest struct {
	Title     string  `form:"title" json:"title" validate:"required,max=200"`
	StudentID *string `form:"student_id" json:"student_id" validate:"omitempty,uuid"`
}

// DocumentLink is document metadata plus a signed download URL.
type DocumentLink struct {
	DownloadURL string `json:"download_url"`
	ExpiresAt   string `json:"expires_at"`
}
