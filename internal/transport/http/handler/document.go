package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ujjwal-07/RAG-CHAT/internal/app"
	"github.com/ujjwal-07/RAG-CHAT/internal/pkg/pdfextract"
	"github.com/ujjwal-07/RAG-CHAT/internal/rag"
	"github.com/ujjwal-07/RAG-CHAT/internal/transport/http/response"
	"github.com/ujjwal-07/RAG-CHAT/internal/vision"
)

// Upload types accepted, mirroring what the extraction step can handle:
// PDFs carry their own text, images go through the local labeler.
var allowedMediaTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
}

type DocumentHandler struct {
	docService   *app.DocumentService
	labeler      *vision.Labeler
	maxFileSize  int64
	parseTimeout time.Duration
}

type CreateDocumentRequest struct {
	Name    string `json:"name"`
	Content string `json:"content" binding:"required"`
}

func NewDocumentHandler(docService *app.DocumentService, labeler *vision.Labeler, maxFileSizeMB, parseTimeoutSeconds int) *DocumentHandler {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 10
	}
	if parseTimeoutSeconds <= 0 {
		parseTimeoutSeconds = 30
	}
	return &DocumentHandler{
		docService:   docService,
		labeler:      labeler,
		maxFileSize:  int64(maxFileSizeMB) << 20,
		parseTimeout: time.Duration(parseTimeoutSeconds) * time.Second,
	}
}

// Create ingests raw text sent as JSON, for callers that already have the
// document's text.
func (h *DocumentHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.docService.Ingest(c.Request.Context(), app.IngestInput{
		UserID:    userID,
		Name:      req.Name,
		MediaType: "text/plain",
		Size:      int64(len(req.Content)),
		Content:   req.Content,
	})
	if err != nil {
		h.writeIngestError(c, err)
		return
	}

	response.OK(c, result)
}

// Upload accepts a multipart form with "file" (PDF or image) and optional
// "name", extracts text and ingests it.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > h.maxFileSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large")
		return
	}

	mediaType := file.Header.Get("Content-Type")
	if mediaType == "" {
		mediaType = guessMediaType(file.Filename)
	}
	if !allowedMediaTypes[mediaType] {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "unsupported file type")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	var text string
	switch {
	case mediaType == "application/pdf":
		text, err = pdfextract.ExtractTextWithTimeout(c.Request.Context(), f, h.parseTimeout)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to extract text from PDF: "+err.Error())
			return
		}
	case strings.HasPrefix(mediaType, "image/"):
		if h.labeler == nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "image uploads are not enabled")
			return
		}
		data, readErr := io.ReadAll(f)
		if readErr != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to read image")
			return
		}
		text, err = h.labeler.Describe(data)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to describe image: "+err.Error())
			return
		}
	}

	if strings.TrimSpace(text) == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no text was found in the document")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
		if name == "" {
			name = "Untitled"
		}
	}

	result, err := h.docService.Ingest(c.Request.Context(), app.IngestInput{
		UserID:    userID,
		Name:      name,
		MediaType: mediaType,
		Size:      file.Size,
		Content:   text,
	})
	if err != nil {
		h.writeIngestError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	docs, err := h.docService.ListDocuments(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}

	response.OK(c, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	docID, err := parseUintParam(c, "id")
	if err != nil || docID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	detail, err := h.docService.GetDocument(userID, docID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get document failed")
		}
		return
	}

	response.OK(c, detail)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	docID, err := parseUintParam(c, "id")
	if err != nil || docID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	if err := h.docService.DeleteDocument(userID, docID); err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_document_id": docID})
}

func (h *DocumentHandler) writeIngestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, rag.ErrEmptyExtraction):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no text was found in the document")
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest failed: "+err.Error())
	}
}

func guessMediaType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
