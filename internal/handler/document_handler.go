package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gasdoc/internal/domain"
	"gasdoc/internal/service"
)

// DocumentHandler handles document classification and extraction endpoints.
type DocumentHandler struct {
	fileService     service.FileService
	documentService service.DocumentService
	logger          *zap.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(fileService service.FileService, documentService service.DocumentService, logger *zap.Logger) *DocumentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentHandler{fileService: fileService, documentService: documentService, logger: logger}
}

// ListTypes handles GET /api/v1/document-types
func (h *DocumentHandler) ListTypes(c *gin.Context) {
	RespondOK(c, gin.H{"documentTypes": h.documentService.ListTypes()})
}

// Classify handles POST /api/v1/documents/classify
func (h *DocumentHandler) Classify(c *gin.Context) {
	doc, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.documentService.Classify(c.Request.Context(), *doc)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	RespondOK(c, result)
}

// Process handles POST /api/v1/documents/process
// The optional document_type form field skips classification.
func (h *DocumentHandler) Process(c *gin.Context) {
	var forced *domain.DocumentType
	if raw := c.PostForm("document_type"); raw != "" {
		dt, err := domain.ParseDocumentType(raw)
		if err != nil {
			HandleError(c, h.logger, err)
			return
		}
		forced = &dt
	}
	h.process(c, forced)
}

// ProcessAs handles POST /api/v1/documents/:type/process
func (h *DocumentHandler) ProcessAs(c *gin.Context) {
	dt, err := domain.ParseDocumentType(c.Param("type"))
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	h.process(c, &dt)
}

func (h *DocumentHandler) process(c *gin.Context, forced *domain.DocumentType) {
	doc, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.documentService.Process(c.Request.Context(), *doc, forced)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	RespondOK(c, result)
}

// readUpload validates the multipart "file" field. Returns false if an error response
// has already been written.
func (h *DocumentHandler) readUpload(c *gin.Context) (*domain.Document, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, h.logger, domain.ErrFileTooLarge)
			return nil, false
		}
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return nil, false
	}
	defer func() { _ = file.Close() }()

	doc, err := h.fileService.Read(c.Request.Context(), service.FileInput{
		Name: header.Filename,
		Size: header.Size,
		Body: file,
	})
	if err != nil {
		HandleError(c, h.logger, err)
		return nil, false
	}
	return doc, true
}
