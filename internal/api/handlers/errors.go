package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/chynybekuuludastan/cro_optimizer/internal/service/analyzer"
)

// errorResponse writes the common error envelope.
func errorResponse(c *fiber.Ctx, status int, message string, details any) error {
	body := fiber.Map{
		"success": false,
		"error":   message,
	}
	if details != nil {
		body["details"] = details
	}
	return c.Status(status).JSON(body)
}

// analysisStatus maps an analyzer error to the HTTP status and message
// returned to the client.
func analysisStatus(err error) (int, string, any) {
	var (
		validationErr *analyzer.ValidationError
		allFailedErr  *analyzer.AllFailedError
		fetchErr      *analyzer.FetchError
	)
	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Error(), nil
	case errors.As(err, &allFailedErr):
		return fiber.StatusBadGateway, "Failed to analyze any of the provided URLs", fiber.Map{
			"failed_urls": allFailedErr.URLs(),
		}
	case errors.As(err, &fetchErr):
		if fetchErr.Timeout {
			return fiber.StatusRequestTimeout, "Request timeout while loading the page", nil
		}
		reason := "no content"
		if fetchErr.Err != nil {
			reason = fetchErr.Err.Error()
		}
		return fiber.StatusBadRequest, "Failed to extract content: " + reason, nil
	}
	return fiber.StatusInternalServerError, "Failed to analyze URL: " + err.Error(), nil
}
