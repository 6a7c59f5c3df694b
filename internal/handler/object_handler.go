package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"chunkrelay/internal/service"
)

// ObjectHandler handles browse and download endpoints.
type ObjectHandler struct {
	objectService service.ObjectService
}

// NewObjectHandler creates a new ObjectHandler.
func NewObjectHandler(objectService service.ObjectService) *ObjectHandler {
	return &ObjectHandler{objectService: objectService}
}

// List handles GET /objects
func (h *ObjectHandler) List(c *gin.Context) {
	objects, err := h.objectService.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, objects)
}

// Download handles GET /objects/:key. The object body is streamed to the
// client with a content-disposition carrying the percent-encoded filename.
func (h *ObjectHandler) Download(c *gin.Context) {
	key := c.Param("key")

	obj, err := h.objectService.Download(c.Request.Context(), key)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer func() { _ = obj.Body.Close() }()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, obj.Size, contentType, obj.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(key)),
	})
}
