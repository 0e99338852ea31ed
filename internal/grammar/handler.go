package grammar

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"seoblog-backend/internal/shared/server/respond"
)

// Checker is the part of Client the handler needs; tests inject fakes.
type Checker interface {
	Check(ctx context.Context, text string) ([]Suggestion, error)
}

// UnconfiguredChecker stands in when no grammar API is configured. Every
// check fails, which the handler reports as an unavailable service.
type UnconfiguredChecker struct{}

func (UnconfiguredChecker) Check(ctx context.Context, text string) ([]Suggestion, error) {
	return nil, errors.New("grammar service not configured")
}

// Handler wires the grammar check endpoint.
type Handler struct {
	Client Checker
}

// NewHandler constructs a Handler.
func NewHandler(client Checker) *Handler {
	return &Handler{Client: client}
}

// RegisterRoutes attaches grammar routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/grammar/check", h.check)
}

type checkRequest struct {
	Text string `json:"text"`
}

func (h *Handler) check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "text is required", nil)
		return
	}

	suggestions, err := h.Client.Check(c.Request.Context(), req.Text)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "grammar_check_failed", "grammar service unavailable", nil)
		return
	}

	respond.OK(c, gin.H{"suggestions": suggestions})
}
