package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chunkrelay/internal/domain"
	"chunkrelay/internal/service"
)

// UploadHandler handles the relay's upload protocol endpoints.
type UploadHandler struct {
	uploadService service.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

type initiateRequest struct {
	Filename string `json:"filename"`
	FileSize int64  `json:"fileSize"`
}

type completeRequest struct {
	Filename string                 `json:"filename"`
	UploadID string                 `json:"uploadId"`
	Parts    []domain.CompletedPart `json:"parts"`
}

type abortRequest struct {
	Filename string `json:"filename"`
	UploadID string `json:"uploadId"`
}

// Initiate handles POST /upload/initiate
func (h *UploadHandler) Initiate(c *gin.Context) {
	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON with filename and fileSize")
		return
	}
	if req.Filename == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_FILENAME", "filename is required")
		return
	}
	if req.FileSize <= 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_FILE_SIZE", "fileSize must be a positive integer")
		return
	}

	out, err := h.uploadService.Initiate(c.Request.Context(), req.Filename, req.FileSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, out)
}

// PutObject handles PUT /upload/object?key= (simple mode direct put). The
// body is streamed to the store, not buffered.
func (h *UploadHandler) PutObject(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_KEY", "key query parameter is required")
		return
	}

	etag, err := h.uploadService.PutSimple(c.Request.Context(), key, c.Request.Body, c.Request.ContentLength)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"etag": etag})
}

// PutPart handles PUT /upload/part?uploadId=&partNumber=
func (h *UploadHandler) PutPart(c *gin.Context) {
	uploadID := c.Query("uploadId")
	if uploadID == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_UPLOAD_ID", "uploadId query parameter is required")
		return
	}
	partNumber, err := strconv.Atoi(c.Query("partNumber"))
	if err != nil || partNumber < 1 {
		RespondError(c, http.StatusBadRequest, "INVALID_PART_NUMBER", "partNumber must be a positive integer")
		return
	}

	part, err := h.uploadService.UploadPart(c.Request.Context(), uploadID, partNumber, c.Request.Body, c.Request.ContentLength)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, part)
}

// Complete handles POST /upload/complete
func (h *UploadHandler) Complete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON with filename, uploadId and parts")
		return
	}
	if req.UploadID == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_UPLOAD_ID", "uploadId is required")
		return
	}
	if len(req.Parts) == 0 {
		RespondError(c, http.StatusBadRequest, "MISSING_PARTS", "parts must be a non-empty list")
		return
	}

	if err := h.uploadService.Complete(c.Request.Context(), req.UploadID, req.Parts); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, nil)
}

// Abort handles POST /upload/abort
func (h *UploadHandler) Abort(c *gin.Context) {
	var req abortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON with filename and uploadId")
		return
	}
	if req.UploadID == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_UPLOAD_ID", "uploadId is required")
		return
	}

	if err := h.uploadService.Abort(c.Request.Context(), req.UploadID); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, nil)
}
