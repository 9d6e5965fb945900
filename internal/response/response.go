// Package response writes the JSON envelopes every endpoint returns.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Envelope struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
}

type ErrorEnvelope struct {
	Success    bool     `json:"success"`
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
}

func OK(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusOK, message, data)
}

func Created(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusCreated, message, data)
}

func JSON(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

// Error aborts the chain with the error envelope. errs is never serialized as null.
func Error(c *gin.Context, status int, message string, errs []string) {
	if errs == nil {
		errs = []string{}
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Success:    false,
		StatusCode: status,
		Message:    message,
		Errors:     errs,
	})
}
