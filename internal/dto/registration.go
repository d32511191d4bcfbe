package dto

import "github.com/noah-isme/school-portal-api/internal/models"

// RegistrationSubmission is the public enrollment form.
type RegistrationSubmission struct {
	StudentName string `json:"studentName" validate:"required,max=200"`
	StudentDOB  string `json:"studentDob" validate:"omitempty,datetime=2006-01-02"`
	GradeLevel  string `json:"gradeLevel" validate:"omitempty,max=20"`
	ParentName  string `json:"parentName" validate:"required,max=200"`
	ParentEmail string `json:"parentEmail" validate:"required,email,max=255"`
	ClassID     string `json:"classId" validate:"required,uuid"`
}

// RegistrationSubmitted acknowledges a stored submission.
type RegistrationSubmitted struct {
	Message string                      `json:"message"`
	Request *models.RegistrationRequest `json:"request"`
}

// RegistrationDecision reports the outcome of approving or rejecting a request.
// StudentID is set only on approval; NotifiedUserID only when a parent account matched.
type RegistrationDecision struct {
	Message        string                      `json:"message"`
	Request        *models.RegistrationRequest `json:"request"`
	StudentID      *string                     `json:"studentId"`
	NotifiedUserID *string                     `json:"notifiedUserId"`
}

// RegistrationExport is a rendered listing ready to stream.
type RegistrationExport struct {
	FileName    string
	ContentType string
	Content     []byte
}
