package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/chynybekuuludastan/cro_optimizer/internal/service/llm"
)

// Recommender produces AI-or-rubric recommendations for a page.
type Recommender interface {
	Recommend(ctx context.Context, url string) (*llm.Result, error)
}

// SEOHandler serves AI recommendations with rubric failover
type SEOHandler struct {
	Recommender Recommender
	Logger      *slog.Logger
}

// NewSEOHandler creates a new SEO handler
func NewSEOHandler(r Recommender, logger *slog.Logger) *SEOHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SEOHandler{Recommender: r, Logger: logger}
}

// GetRecommendations returns AI suggestions for a page, or the checklist
// findings when the model is unavailable
// @Summary AI recommendations
// @Description Asks the configured LLM for CRO suggestions and falls back to the checklist
// @Tags SEO
// @Accept json
// @Produce json
// @Param request body URLRequest true "Page to analyze"
// @Success 200 {object} llm.Result
// @Failure 400 {object} api.ErrorResponse
// @Failure 408 {object} api.ErrorResponse
// @Router /seo/recommendations [post]
func (h *SEOHandler) GetRecommendations(c *fiber.Ctx) error {
	req := new(URLRequest)
	if err := c.BodyParser(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body: "+err.Error(), nil)
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return errorResponse(c, fiber.StatusBadRequest, "URL is required", nil)
	}

	result, err := h.Recommender.Recommend(c.UserContext(), req.URL)
	if err != nil {
		status, message, details := analysisStatus(err)
		h.Logger.Error("Failed to get recommendations", slog.String("url", req.URL), slog.Any("error", err))
		return errorResponse(c, status, message, details)
	}

	return c.JSON(result)
}
