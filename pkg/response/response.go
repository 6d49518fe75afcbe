// Package response renders the standard success/error JSON envelopes.
package response

import (
	"errors"
	"net/http"
	"time"

	"payflow/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// envelope is the common success shape: {data, request_id, timestamp}.
type envelope struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
	Timestamp string      `json:"timestamp"`
}

type errorBody struct {
	Code    apperror.Code `json:"code"`
	Message string        `json:"message"`
	Details string        `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error     errorBody `json:"error"`
	RequestID string    `json:"request_id"`
	Timestamp string    `json:"timestamp"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Data: data, RequestID: RequestID(c), Timestamp: now()})
}

// Created sends a 201 response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Data: data, RequestID: RequestID(c), Timestamp: now()})
}

// Error renders err as the standard error envelope. Unrecognized errors
// become a 500 "internal" response; the underlying cause is never leaked.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, errorEnvelope{
			Error:     errorBody{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details},
			RequestID: RequestID(c),
			Timestamp: now(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, errorEnvelope{
		Error:     errorBody{Code: apperror.CodeInternal, Message: "internal server error"},
		RequestID: RequestID(c),
		Timestamp: now(),
	})
}

// RequestID returns the per-request correlation id, generating one on first
// access and caching it on the gin context.
func RequestID(c *gin.Context) string {
	if id, exists := c.Get("request_id"); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.New().String()
	}
	c.Set("request_id", id)
	return id
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }
