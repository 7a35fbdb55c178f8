package api

// This file contains model definitions for Swagger documentation

// ErrorResponse represents an error response
// @Description Error response
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"Request timeout while loading the page"`

	// Extra context such as the failed URLs of a comparison
	Details any `json:"details,omitempty" swaggertype:"object"`
}

// HealthResponse represents the health check response
// @Description Health check response
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version" example:"1.0.0"`
}
