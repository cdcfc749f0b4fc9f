// Package httperr writes the error response envelope shared by every layer:
// {"error":{"code":"...","message":"...","details":{...}}}.
package httperr

import "github.com/gin-gonic/gin"

type Body struct {
	Error Detail `json:"error"`
}

type Detail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Write sends an error envelope and aborts the request.
func Write(c *gin.Context, status int, code, message string) {
	WriteDetails(c, status, code, message, nil)
}

// WriteDetails is Write with an opaque details object attached.
func WriteDetails(c *gin.Context, status int, code, message string, details map[string]any) {
	c.AbortWithStatusJSON(status, Body{Error: Detail{
		Code:    code,
		Message: message,
		Details: details,
	}})
}
