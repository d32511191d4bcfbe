package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/dto"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

// multipartOverhead is allowed on top of the file limit for form fields and boundaries.
const multipartOverhead = 1 << 20

// DocumentHandler exposes document upload and download endpoints.
type DocumentHandler struct {
	service  *service.DocumentService
	maxBytes int64
}

// NewDocumentHandler constructs a DocumentHandler. maxFileSize bounds the request body.
func NewDocumentHandler(svc *service.DocumentService, maxFileSize int64) *DocumentHandler {
	return &DocumentHandler{service: svc, maxBytes: maxFileSize + multipartOverhead}
}

// Upload godoc
// @Summary Upload document
// @Tags Documents
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param student_id formData string false "Student reference"
// @Param file formData file true "Document"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)

	var req dto.UploadDocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, uploadError(err, "invalid document payload"))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, uploadError(err, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	upload := service.DocumentUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  src,
	}
	doc, err := h.service.Upload(c.Request.Context(), req, upload, user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// List godoc
// @Summary List documents
// @Tags Documents
// @Security BearerAuth
// @Produce json
// @Param student_id query string false "Student reference"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	page, size := pageParams(c)
	filter := models.DocumentFilter{StudentID: c.Query("student_id"), Page: page, PageSize: size}
	docs, pagination, err := h.service.List(c.Request.Context(), filter, user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, pagination)
}

// Get godoc
// @Summary Document metadata with a signed download link
// @Tags Documents
// @Security BearerAuth
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	doc, link, err := h.service.Get(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil, map[string]interface{}{"download_url": link.DownloadURL, "expires_at": link.ExpiresAt})
}

// Download godoc
// @Summary Download a document with a signed token
// @Tags Documents
// @Produce octet-stream
// @Param id path string true "Document ID"
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	download, err := h.service.Download(c.Request.Context(), c.Param("id"), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	c.Header("Content-Type", download.MimeType)
	c.Header("Content-Length", strconv.FormatInt(download.SizeBytes, 10))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, download.File)
}

// Delete godoc
// @Summary Delete document
// @Tags Documents
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), user); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func uploadError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return appErrors.Clone(appErrors.ErrPayloadTooLarge, "request body too large")
	}
	return bindError(err, message)
}
