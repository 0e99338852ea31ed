package blogs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"seoblog-backend/internal/generate"
	"seoblog-backend/internal/shared/server/middleware"
	"seoblog-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches blog routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/blogs", h.create)
	rg.GET("/blogs", h.list)
	rg.GET("/blogs/:id", h.get)
	rg.PATCH("/blogs/:id", h.update)
	rg.POST("/blogs/:id/regenerate", h.regenerate)
	rg.POST("/blogs/:id/publish", h.publish)
	rg.DELETE("/blogs/:id", h.remove)
	rg.GET("/blogs/:id/download", h.download)
}

type createRequest struct {
	Topic       string   `json:"topic"`
	Tone        string   `json:"tone"`
	Keywords    string   `json:"keywords"`
	DocumentIDs []string `json:"documentIds"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	blog, err := h.Svc.Create(c.Request.Context(), userID, CreateParams{
		Topic:       req.Topic,
		Tone:        req.Tone,
		Keywords:    req.Keywords,
		DocumentIDs: req.DocumentIDs,
	})
	if err != nil {
		respondServiceError(c, err, "failed to create blog")
		return
	}

	respond.Created(c, toResponse(blog))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	blogsList, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list blogs", nil)
		return
	}

	resp := make([]BlogResponse, 0, len(blogsList))
	for _, blog := range blogsList {
		resp = append(resp, toResponse(blog))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	blog, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "failed to fetch blog")
		return
	}
	respond.OK(c, toResponse(blog))
}

type updateRequest struct {
	Topic          *string   `json:"topic"`
	Tone           *string   `json:"tone"`
	BlogTitle      *string   `json:"blogTitle"`
	BlogOutline    *string   `json:"blogOutline"`
	BlogDraft      *string   `json:"blogDraft"`
	TargetKeywords *[]string `json:"targetKeywords"`
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	blog, err := h.Svc.Update(c.Request.Context(), userID, c.Param("id"), UpdateParams{
		Topic:          req.Topic,
		Tone:           req.Tone,
		BlogTitle:      req.BlogTitle,
		BlogOutline:    req.BlogOutline,
		BlogDraft:      req.BlogDraft,
		TargetKeywords: req.TargetKeywords,
	})
	if err != nil {
		respondServiceError(c, err, "failed to update blog")
		return
	}
	respond.OK(c, toResponse(blog))
}

type regenerateRequest struct {
	DocumentIDs []string `json:"documentIds"`
}

func (h *Handler) regenerate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	// The body is optional; when present it may carry a replacement
	// reference set.
	var req regenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}

	blog, err := h.Svc.Regenerate(c.Request.Context(), userID, c.Param("id"), req.DocumentIDs)
	if err != nil {
		respondServiceError(c, err, "failed to regenerate blog")
		return
	}
	respond.OK(c, toResponse(blog))
}

func (h *Handler) publish(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	blog, err := h.Svc.Publish(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "failed to publish blog")
		return
	}
	respond.OK(c, toResponse(blog))
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondServiceError(c, err, "failed to delete blog")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	blog, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "failed to fetch blog")
		return
	}

	payload, err := BuildDocx(blog)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render document", nil)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+DocxFileName(blog)+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", payload)
}

func respondServiceError(c *gin.Context, err error, fallback string) {
	var genErr *generate.GenerationError
	var malformed *generate.MalformedResponseError
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "blog not found", nil)
	case errors.Is(err, ErrAlreadyInProgress):
		respond.Error(c, http.StatusConflict, "already_in_progress", "a generation for this blog is already running", nil)
	case errors.Is(err, ErrInvalidState):
		respond.Error(c, http.StatusConflict, "invalid_state", err.Error(), nil)
	case errors.Is(err, ErrNoReferenceText):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.As(err, &genErr), errors.As(err, &malformed):
		respond.Error(c, http.StatusBadGateway, "generation_failed", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
