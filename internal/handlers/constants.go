package handlers

const (
	maxRequestBody = 1 << 20

	ErrInvalidRequestBody  = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrTooManyRequests     = "Too many requests, please slow down"
	ErrInternalServerError = "Internal server error"
	ErrUpstreamUnavailable = "Upstream service unavailable"
)
