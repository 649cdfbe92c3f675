// Package http provides the JSON API server and its handlers.
//
// This file implements the Builder Pattern for JSON responses so every
// handler writes status, headers and body the same way.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"billtracker/internal/core"
	"billtracker/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header sets a custom header on the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.body != nil {
		_ = json.NewEncoder(w).Encode(b.body)
	}
}

type errorBody struct {
	Error   string   `json:"error"`
	Field   string   `json:"field,omitempty"`
	Details []string `json:"details,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

// ErrorResponse creates a standard {"error": message} response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnauthorizedError creates the 401 response sent before any admin action.
func UnauthorizedError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, "Unauthorized")
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// MessageResponse creates a 200 {"message": message} response.
func MessageResponse(message string) *JSONResponseBuilder {
	return NewJSONResponse().Body(messageBody{Message: message})
}

// ErrorFor maps a service error onto its response. fallback is the message
// used for unclassified failures, which are logged.
func ErrorFor(r *http.Request, err error, fallback string) *JSONResponseBuilder {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return NewJSONResponse().Status(http.StatusBadRequest).
			Body(errorBody{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError("Bill not found")
	case errors.Is(err, core.ErrUnauthorized):
		return UnauthorizedError()
	case errors.Is(err, core.ErrDuplicate):
		return ErrorResponse(http.StatusConflict, "A bill with this bill_number already exists")
	}

	ctx := r.Context()
	log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, fallback, err, log.ComponentHTTP, r.Method+" "+r.URL.Path,
		log.NewFields().WithErrorType(log.ErrorTypeInternal))
	return InternalServerError(fallback)
}
