package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type documentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error)
	Delete(ctx context.Context, id string) error
}

type documentStorage interface {
	SaveStream(filename string, r io.Reader) (string, int64, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type documentSigner interface {
	Generate(resourceID string) (string, time.Time, error)
	Verify(resourceID, token string) error
}

// DocumentUpload is the file part of a multipart upload.
type DocumentUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// DocumentDownload is an opened document ready to stream. Callers close File.
type DocumentDownload struct {
	File      *os.File
	Filename  string
	MimeType  string
	SizeBytes int64
}

// DocumentServiceConfig holds upload limits and the public route prefix for download links.
type DocumentServiceConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
	APIPrefix    string
}

// DocumentService stores uploads on disk and hands out signed download links.
type DocumentService struct {
	repo      documentRepository
	storage   documentStorage
	signer    documentSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       DocumentServiceConfig
	mimeSet   map[string]struct{}
	now       func() time.Time
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(repo documentRepository, storage documentStorage, signer documentSigner, validate *validator.Validate, logger *zap.Logger, cfg DocumentServiceConfig) *DocumentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"application/pdf", "image/png", "image/jpeg"}
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &DocumentService{
		repo:      repo,
		storage:   storage,
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		mimeSet:   mimeSet,
		now:       time.Now,
	}
}

// Upload validates and stores a file, then records its metadata.
func (s *DocumentService) Upload(ctx context.Context, meta dto.UploadDocumentRequest, upload DocumentUpload, actor *models.User) (*models.Document, error) {
	meta.Title = strings.TrimSpace(meta.Title)
	if err := s.validator.Struct(meta); err != nil {
		return nil, validationError(err, "invalid document payload")
	}
	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}
	mimeType, err := detectMime(upload)
	if err != nil {
		return nil, err
	}
	if _, ok := s.mimeSet[strings.ToLower(mimeType)]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mime type not allowed")
	}

	id := uuid.NewString()
	name := filepath.ToSlash(filepath.Join("documents", s.now().UTC().Format("2006/01"), id+storedExtension(upload.Filename, mimeType)))
	path, written, err := s.storage.SaveStream(name, io.LimitReader(upload.Content, s.cfg.MaxFileSize+1))
	if err != nil {
		return nil, internalError(err, "failed to store document")
	}
	if written > s.cfg.MaxFileSize {
		s.removeFile(path)
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}

	doc := &models.Document{
		ID:         id,
		Title:      meta.Title,
		FileName:   filepath.Base(upload.Filename),
		FilePath:   path,
		MimeType:   mimeType,
		SizeBytes:  written,
		StudentID:  meta.StudentID,
		UploadedBy: actor.ID,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		s.removeFile(path)
		if isForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student not found")
		}
		return nil, internalError(err, "failed to save document metadata")
	}
	s.logger.Info("document uploaded", zap.String("document_id", doc.ID), zap.String("uploaded_by", actor.ID), zap.Int64("size_bytes", written))
	return doc, nil
}

// List returns documents visible to actor. Staff see every document, others only their own uploads.
func (s *DocumentService) List(ctx context.Context, filter models.DocumentFilter, actor *models.User) ([]models.Document, *models.Pagination, error) {
	if !isStaff(actor) {
		filter.UploadedBy = actor.ID
	}
	docs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list documents")
	}
	return docs, paginate(filter.Page, filter.PageSize, total), nil
}

// Get returns metadata plus a signed download link.
func (s *DocumentService) Get(ctx context.Context, id string, actor *models.User) (*models.Document, *dto.DocumentLink, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !isStaff(actor) && doc.UploadedBy != actor.ID {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	token, expiresAt, err := s.signer.Generate(doc.ID)
	if err != nil {
		return nil, nil, internalError(err, "failed to sign download link")
	}
	base := strings.TrimRight(s.cfg.APIPrefix, "/")
	link := &dto.DocumentLink{
		DownloadURL: fmt.Sprintf("%s/documents/%s/download?token=%s", base, doc.ID, token),
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	}
	return doc, link, nil
}

// Download verifies token against id and opens the stored file.
func (s *DocumentService) Download(ctx context.Context, id, token string) (*DocumentDownload, error) {
	if err := s.signer.Verify(id, token); err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	file, err := s.storage.Open(doc.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document file missing")
		}
		return nil, internalError(err, "failed to open document")
	}
	return &DocumentDownload{File: file, Filename: doc.FileName, MimeType: doc.MimeType, SizeBytes: doc.SizeBytes}, nil
}

// Delete removes a document. Only the uploader or an admin may delete.
func (s *DocumentService) Delete(ctx context.Context, id string, actor *models.User) error {
	doc, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleAdmin && doc.UploadedBy != actor.ID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the uploader or an admin can delete this document")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return internalError(err, "failed to delete document")
	}
	s.removeFile(doc.FilePath)
	return nil
}

func (s *DocumentService) find(ctx context.Context, id string) (*models.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, internalError(err, "failed to load document")
	}
	return doc, nil
}

func (s *DocumentService) removeFile(path string) {
	if err := s.storage.Delete(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove stored document", zap.String("path", path), zap.Error(err))
	}
}

func isStaff(user *models.User) bool {
	return user.Role == models.RoleAdmin || user.Role == models.RoleTeacher
}

func detectMime(upload DocumentUpload) (string, error) {
	if upload.MimeType != "" && upload.MimeType != "application/octet-stream" {
		return strings.TrimSpace(strings.Split(upload.MimeType, ";")[0]), nil
	}
	header := make([]byte, 512)
	n, err := upload.Content.Read(header)
	if err != nil && err != io.EOF {
		return "", internalError(err, "failed to inspect file")
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", internalError(err, "failed to reset upload stream")
	}
	if n == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	return strings.Split(http.DetectContentType(header[:n]), ";")[0], nil
}

func storedExtension(original, mimeType string) string {
	if ext := strings.ToLower(filepath.Ext(original)); ext != "" && len(ext) <= 6 {
		return ext
	}
	switch strings.ToLower(mimeType) {
	case "application/pdf":
		return ".pdf"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	default:
		return ".bin"
	}
}
