package api

import "time"

// GraphQLRequest is the body of a GraphQL HTTP request.
type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// HealthResponse is returned by GET /health and the health query.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Health status values.
const (
	StatusHealthy   = "Healthy"
	StatusUnhealthy = "Unhealthy"
)

// ErrorResponse represents a transport-level error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
