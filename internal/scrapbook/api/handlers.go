package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/STop211650/ai-scrapbook/internal/scrapbook/extract"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/service"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/store"
	"github.com/STop211650/ai-scrapbook/pkg/logger"
)

// Handler carries the services behind the HTTP surface.
type Handler struct {
	capture   *service.CaptureService
	search    *service.SearchService
	ask       *service.AskService
	summarize *service.SummarizeService
	store     service.ContentStore

	maxUploadBytes int64
	log            *logger.Logger
}

// NewHandler wires the HTTP handlers.
func NewHandler(
	capture *service.CaptureService,
	search *service.SearchService,
	ask *service.AskService,
	summarize *service.SummarizeService,
	contentStore service.ContentStore,
	maxUploadBytes int64,
	log *logger.Logger,
) *Handler {
	return &Handler{
		capture:   capture,
		search:    search,
		ask:       ask,
		summarize: summarize,
		store:     contentStore,

		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

type captureRequest struct {
	Content string `json:"content"`
}

// CreateContent captures a new item from JSON `{content}` or from a
// multipart file upload. Enrichment runs in the background; the response
// reports the item with enrichment still pending.
func (h *Handler) CreateContent(c *gin.Context) {
	if isMultipart(c) {
		h.createContentFromUpload(c)
		return
	}

	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	item, _, err := h.capture.Capture(c.Request.Context(), userID(c), req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) createContentFromUpload(c *gin.Context) {
	data, filename, mimeType, err := h.readUpload(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	item, _, err := h.capture.CaptureUpload(c.Request.Context(), userID(c), data, filename, mimeType)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetContent returns one of the caller's items.
func (h *Handler) GetContent(c *gin.Context) {
	item, err := h.store.FindByID(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteContent removes one of the caller's items along with its embedding
// and archived payload.
func (h *Handler) DeleteContent(c *gin.Context) {
	if err := h.capture.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Summarize extracts and summarizes a URL without storing anything.
func (h *Handler) Summarize(c *gin.Context) {
	var req service.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.summarize.SummarizeURL(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SummarizeFile extracts and summarizes an uploaded file.
func (h *Handler) SummarizeFile(c *gin.Context) {
	data, filename, mimeType, err := h.readUpload(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	req := &service.SummarizeRequest{
		Length:          c.PostForm("length"),
		Model:           c.PostForm("model"),
		IncludeMetadata: c.PostForm("includeMetadata") == "true",
	}
	result, err := h.summarize.SummarizeFile(c.Request.Context(), data, filename, mimeType, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SummarizeStatus reports which extraction sources have credentials.
func (h *Handler) SummarizeStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.summarize.Status())
}

// Search runs one retrieval query over the caller's items.
func (h *Handler) Search(c *gin.Context) {
	var req service.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.search.Search(c.Request.Context(), userID(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ask answers a question over the caller's library with citations.
func (h *Handler) Ask(c *gin.Context) {
	var req service.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	resp, err := h.ask.Ask(c.Request.Context(), userID(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// readUpload pulls the multipart file field, enforcing the upload cap.
func (h *Handler) readUpload(c *gin.Context) (data []byte, filename, mimeType string, err error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, "", "", service.ErrInvalidRequest
	}
	if fileHeader.Size > h.maxUploadBytes {
		return nil, "", "", extract.ErrSizeLimitExceeded
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", "", service.ErrInvalidRequest
	}
	defer file.Close()

	data, err = io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return nil, "", "", service.ErrInvalidRequest
	}
	if int64(len(data)) > h.maxUploadBytes {
		return nil, "", "", extract.ErrSizeLimitExceeded
	}
	return data, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), nil
}

// fail maps a service error to its HTTP status. 5xx details stay out of the
// response body.
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed: " + err.Error())
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, extract.ErrInvalidInput), errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, extract.ErrSizeLimitExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, extract.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, extract.ErrEmptyText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, extract.ErrUpstreamFetch), errors.Is(err, extract.ErrNotConfigured):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/")
}
