package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Machine-readable error codes. Clients branch on Code, never on Message.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInvalidCreds      = "INVALID_CREDENTIALS"
	CodeAccountPending    = "ACCOUNT_PENDING"
	CodeAccountInactive   = "ACCOUNT_INACTIVE"
	CodeForbidden         = "FORBIDDEN"
	CodeGroupAccessDenied = "GROUP_ACCESS_DENIED"
	CodeNotFound          = "NOT_FOUND"
	CodeUsernameExists    = "USERNAME_EXISTS"
	CodeEmailExists       = "EMAIL_EXISTS"
	CodeGroupExists       = "GROUP_EXISTS"
	CodeResetInvalid      = "RESET_TOKEN_INVALID"
	CodeUpstreamSheets    = "UPSTREAM_SHEETS"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInternal          = "INTERNAL"
)

// ErrorBody is the uniform error envelope.
type ErrorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
	Hint    string       `json:"hint,omitempty"`
}

// FieldError points a validation message at a single request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ── success responses ──
//
// Successful payloads are returned bare; only errors are enveloped.

// OK writes a 200 response with the given payload.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent writes an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ── error responses ──

// Error writes an enveloped error with the given HTTP status.
func Error(c *gin.Context, httpStatus int, code, message string) {
	c.JSON(httpStatus, ErrorBody{Code: code, Message: message})
}

// ErrorWithHint writes an enveloped error carrying remediation advice.
func ErrorWithHint(c *gin.Context, httpStatus int, code, message, hint string) {
	c.JSON(httpStatus, ErrorBody{Code: code, Message: message, Hint: hint})
}

// ValidationError writes a 400 with per-field messages.
func ValidationError(c *gin.Context, fields []FieldError) {
	c.JSON(http.StatusBadRequest, ErrorBody{
		Code:    CodeValidation,
		Message: "request validation failed",
		Fields:  fields,
	})
}

// ── shortcuts ──

// BadRequest 400
func BadRequest(c *gin.Context, code, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, CodeNotFound, message)
}

// UpstreamFailed 502, with the spreadsheet-sharing hint attached.
func UpstreamFailed(c *gin.Context, message, hint string) {
	ErrorWithHint(c, http.StatusBadGateway, CodeUpstreamSheets, message, hint)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "internal server error")
}
