package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/jobs"
	"github.com/noah-isme/school-portal-api/pkg/mailer"
)

type registrationRepository interface {
	Create(ctx context.Context, req *models.RegistrationRequest) error
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationRequest, error)
	FindByID(ctx context.Context, id string) (*models.RegistrationRequest, error)
	FindByIDWithTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.RegistrationRequest, error)
	MarkProcessedWithTx(ctx context.Context, tx *sqlx.Tx, id string, status models.RegistrationStatus, processedAt time.Time) error
}

type classChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type parentAccountFinder interface {
	FindByEmailAndRoleWithTx(ctx context.Context, tx *sqlx.Tx, email string, role models.UserRole) (*models.User, error)
}

type studentTxCreator interface {
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error
}

type notificationTxCreator interface {
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, n *models.Notification) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type decisionRecorder interface {
	RecordRegistrationDecision(status string)
}

// RegistrationDeps bundles the collaborators of RegistrationService.
type RegistrationDeps struct {
	Tx            txRunner
	Requests      registrationRepository
	Classes       classChecker
	Users         parentAccountFinder
	Students      studentTxCreator
	Notifications notificationTxCreator
	Mail          jobEnqueuer
	Metrics       decisionRecorder
}

// RegistrationService runs the enrollment approval workflow.
type RegistrationService struct {
	deps      RegistrationDeps
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRegistrationService constructs a RegistrationService. Mail and Metrics are optional.
func NewRegistrationService(deps RegistrationDeps, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{deps: deps, validator: validate, logger: logger, now: time.Now}
}

// Submit validates the form and stores a pending request.
func (s *RegistrationService) Submit(ctx context.Context, in dto.RegistrationSubmission) (*models.RegistrationRequest, error) {
	in.StudentName = strings.TrimSpace(in.StudentName)
	in.ParentName = strings.TrimSpace(in.ParentName)
	in.ParentEmail = strings.TrimSpace(in.ParentEmail)
	in.ClassID = strings.TrimSpace(in.ClassID)
	in.GradeLevel = strings.TrimSpace(in.GradeLevel)
	in.StudentDOB = strings.TrimSpace(in.StudentDOB)

	if err := s.validator.Struct(in); err != nil {
		return nil, validationError(err, "invalid registration request")
	}
	dob, err := parseOptionalDate(in.StudentDOB)
	if err != nil {
		return nil, validationError(err, "invalid registration request: studentDob must be a date in YYYY-MM-DD format")
	}

	exists, err := s.deps.Classes.Exists(ctx, in.ClassID)
	if err != nil {
		return nil, internalError(err, "failed to verify class")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid registration request: class not found")
	}

	req := &models.RegistrationRequest{
		StudentName: in.StudentName,
		StudentDOB:  dob,
		ParentName:  in.ParentName,
		ParentEmail: in.ParentEmail,
		ClassID:     in.ClassID,
		SubmittedAt: s.now().UTC(),
	}
	if in.GradeLevel != "" {
		grade := in.GradeLevel
		req.GradeLevel = &grade
	}
	if err := s.deps.Requests.Create(ctx, req); err != nil {
		return nil, internalError(err, "failed to store registration request")
	}

	s.logger.Info("registration submitted", zap.String("request_id", req.ID), zap.String("class_id", req.ClassID))
	return req, nil
}

// List returns requests newest first, optionally narrowed to one status.
func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.RegistrationRequest, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be one of [pending approved rejected]")
	}
	requests, err := s.deps.Requests.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list registration requests")
	}
	return requests, nil
}

// Get returns a single request.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.RegistrationRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "registration request not found")
	}
	req, err := s.deps.Requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration request not found")
		}
		return nil, internalError(err, "failed to load registration request")
	}
	return req, nil
}

// Approve moves a pending request to approved and creates its student. A parent account
// matching the request's e-mail is linked and notified.
func (s *RegistrationService) Approve(ctx context.Context, id string) (*dto.RegistrationDecision, error) {
	return s.decide(ctx, id, models.RegistrationApproved)
}

// Reject moves a pending request to rejected. No student is created.
func (s *RegistrationService) Reject(ctx context.Context, id string) (*dto.RegistrationDecision, error) {
	return s.decide(ctx, id, models.RegistrationRejected)
}

// decide applies the transition and its derived records in one transaction. The status
// update only matches pending rows; a replayed or concurrent call gets a conflict.
func (s *RegistrationService) decide(ctx context.Context, id string, status models.RegistrationStatus) (*dto.RegistrationDecision, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "registration request not found")
	}

	decision := &dto.RegistrationDecision{}
	err := s.deps.Tx.WithinTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.deps.Requests.MarkProcessedWithTx(ctx, tx, id, status, s.now().UTC()); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return s.notPending(ctx, tx, id)
			}
			return internalError(err, "failed to update registration request")
		}

		req, err := s.deps.Requests.FindByIDWithTx(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Wrap(err, appErrors.ErrInvariant.Code, appErrors.ErrInvariant.Status, "registration request missing after update")
			}
			return internalError(err, "failed to reload registration request")
		}
		decision.Request = req

		parent, err := s.deps.Users.FindByEmailAndRoleWithTx(ctx, tx, req.ParentEmail, models.RoleParent)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return internalError(err, "failed to look up parent account")
		}

		if status == models.RegistrationApproved {
			student := studentFromRequest(req, parent)
			if err := s.deps.Students.CreateWithTx(ctx, tx, student); err != nil {
				return internalError(err, "failed to create student")
			}
			decision.StudentID = &student.ID
		}

		if parent != nil {
			n := decisionNotification(req, parent.ID, status)
			if err := s.deps.Notifications.CreateWithTx(ctx, tx, n); err != nil {
				return internalError(err, "failed to create notification")
			}
			parentID := parent.ID
			decision.NotifiedUserID = &parentID
		}
		return nil
	})
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, internalError(err, "failed to process registration request")
	}

	decision.Message = fmt.Sprintf("registration request %s", status)
	fields := []zap.Field{zap.String("request_id", id), zap.String("status", string(status))}
	if decision.StudentID != nil {
		fields = append(fields, zap.String("student_id", *decision.StudentID))
	}
	if decision.NotifiedUserID != nil {
		fields = append(fields, zap.String("parent_user_id", *decision.NotifiedUserID))
	}
	s.logger.Info("registration "+string(status), fields...)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordRegistrationDecision(string(status))
	}
	s.enqueueDecisionMail(decision.Request, status)
	return decision, nil
}

// notPending tells an unknown id apart from one that was already processed.
func (s *RegistrationService) notPending(ctx context.Context, tx *sqlx.Tx, id string) error {
	current, err := s.deps.Requests.FindByIDWithTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "registration request not found")
		}
		return internalError(err, "failed to load registration request")
	}
	return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("registration request already %s", current.Status))
}

func (s *RegistrationService) enqueueDecisionMail(req *models.RegistrationRequest, status models.RegistrationStatus) {
	if s.deps.Mail == nil || req == nil {
		return
	}
	title, body := decisionText(req.StudentName, status)
	msg := mailer.Message{
		To:      mail.Address{Name: req.ParentName, Address: req.ParentEmail},
		Subject: title,
		Text:    fmt.Sprintf("Dear %s,\n\n%s\n", req.ParentName, body),
	}
	job := jobs.Job{ID: uuid.NewString(), Type: mailer.JobType, Payload: msg}
	if err := s.deps.Mail.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue registration mail", zap.String("request_id", req.ID), zap.Error(err))
	}
}

func studentFromRequest(req *models.RegistrationRequest, parent *models.User) *models.Student {
	first, last := splitName(req.StudentName)
	classID := req.ClassID
	requestID := req.ID
	parentName := req.ParentName
	parentEmail := req.ParentEmail
	student := &models.Student{
		FirstName:             first,
		LastName:              last,
		DateOfBirth:           req.StudentDOB,
		GradeLevel:            req.GradeLevel,
		ClassID:               &classID,
		ParentName:            &parentName,
		ParentEmail:           &parentEmail,
		RegistrationRequestID: &requestID,
	}
	if parent != nil {
		parentID := parent.ID
		student.ParentID = &parentID
	}
	return student
}

func decisionNotification(req *models.RegistrationRequest, userID string, status models.RegistrationStatus) *models.Notification {
	title, message := decisionText(req.StudentName, status)
	kind := models.NotificationRegistrationApproved
	if status == models.RegistrationRejected {
		kind = models.NotificationRegistrationRejected
	}
	return &models.Notification{UserID: userID, Title: title, Message: message, Type: kind}
}

func decisionText(studentName string, status models.RegistrationStatus) (title, message string) {
	if status == models.RegistrationRejected {
		return "Registration Rejected", fmt.Sprintf("The registration for %s has been rejected.", studentName)
	}
	return "Registration Approved", fmt.Sprintf("The registration for %s has been approved.", studentName)
}

// splitName puts the first word in the first name and the rest in the last name.
func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
