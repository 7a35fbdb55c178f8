package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
	"github.com/chynybekuuludastan/cro_optimizer/internal/service/analyzer"
)

// CROService is the part of the analyzer used by the HTTP layer.
type CROService interface {
	Analyze(ctx context.Context, url string, includePerformance bool) (*models.CROAnalysis, error)
	CompareWithProgress(ctx context.Context, urls []string, progress analyzer.ProgressFunc) (*models.ComparisonAnalysis, error)
}

// CROHandler handles CRO analysis and comparison requests
type CROHandler struct {
	Analyzer CROService
	Logger   *slog.Logger
}

// URLRequest represents a request to analyze a single page
type URLRequest struct {
	URL string `json:"url" example:"https://example.com"`

	// Defaults to true when omitted.
	IncludePerformance *bool `json:"include_performance,omitempty" example:"true"`
}

// CompareRequest represents a request to compare several pages
type CompareRequest struct {
	URLs []string `json:"urls" example:"https://example.com,https://example.org"`
}

// NewCROHandler creates a new CRO handler
func NewCROHandler(a CROService, logger *slog.Logger) *CROHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CROHandler{
		Analyzer: a,
		Logger:   logger,
	}
}

// GetRecommendations analyses one URL
// @Summary Analyze a page
// @Description Scores a page against the CRO checklist and, unless disabled, its load performance
// @Tags CRO
// @Accept json
// @Produce json
// @Param request body URLRequest true "Page to analyze"
// @Success 200 {object} models.CROAnalysis
// @Failure 400 {object} api.ErrorResponse
// @Failure 408 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /cro/recommendations [post]
func (h *CROHandler) GetRecommendations(c *fiber.Ctx) error {
	req := new(URLRequest)
	if err := c.BodyParser(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body: "+err.Error(), nil)
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return errorResponse(c, fiber.StatusBadRequest, "URL is required", nil)
	}

	includePerformance := req.IncludePerformance == nil || *req.IncludePerformance

	analysis, err := h.Analyzer.Analyze(c.UserContext(), req.URL, includePerformance)
	if err != nil {
		status, message, details := analysisStatus(err)
		h.Logger.Error("Error analyzing URL", slog.String("url", req.URL), slog.Any("error", err))
		return errorResponse(c, status, message, details)
	}

	return c.JSON(analysis)
}

// Compare analyses 2 to 10 URLs and ranks them
// @Summary Compare pages
// @Description Analyzes several pages concurrently, ranks them by combined score and derives insights
// @Tags CRO
// @Accept json
// @Produce json
// @Param request body CompareRequest true "Pages to compare"
// @Success 200 {object} models.ComparisonAnalysis
// @Failure 400 {object} api.ErrorResponse
// @Failure 502 {object} api.ErrorResponse
// @Router /cro/compare [post]
func (h *CROHandler) Compare(c *fiber.Ctx) error {
	req := new(CompareRequest)
	if err := c.BodyParser(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body: "+err.Error(), nil)
	}

	result, err := h.Analyzer.CompareWithProgress(c.UserContext(), req.URLs, nil)
	if err != nil {
		status, message, details := analysisStatus(err)
		h.Logger.Error("Comparison failed", slog.Int("urls", len(req.URLs)), slog.Any("error", err))
		return errorResponse(c, status, message, details)
	}

	return c.JSON(result)
}
