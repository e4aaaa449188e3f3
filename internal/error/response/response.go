package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osmelmr/nodosiot-server/internal/error/code"
)

// Response is the uniform envelope returned by every endpoint.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Created writes a 201 response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// NoContent writes an empty 204 response, used after soft deletes.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Fail writes the registered status/message for an error code.
func Fail(c *gin.Context, errorCode int, data interface{}) {
	c.JSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Message: code.GetMessage(errorCode),
		Data:    data,
	})
}

// FailWithMessage writes an error response with a custom message.
func FailWithMessage(c *gin.Context, errorCode int, message string, data interface{}) {
	c.JSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Message: message,
		Data:    data,
	})
}

// ValidationError writes a 400 response carrying a per-field error map.
// No partial state change has happened when this is returned.
func ValidationError(c *gin.Context, fields map[string]string) {
	FailWithMessage(c, code.ErrValidation, code.GetMessage(code.ErrValidation), gin.H{
		"fields": fields,
	})
}

// ParamError writes a 400 response for a malformed parameter.
func ParamError(c *gin.Context, message string) {
	FailWithMessage(c, code.ErrValidation, message, nil)
}

// NotFound writes a 404 response. The message never discloses whether the
// record existed before being deleted.
func NotFound(c *gin.Context, errorCode int) {
	Fail(c, errorCode, nil)
}

// Forbidden writes a 403 response. Returned only after the target has been
// confirmed to exist.
func Forbidden(c *gin.Context) {
	Fail(c, code.ErrPermissionDenied, nil)
}

// Unauthorized writes a 401 response, before any entity lookup.
func Unauthorized(c *gin.Context) {
	Fail(c, code.ErrTokenInvalid, nil)
}

// ServerError writes a 500 response.
func ServerError(c *gin.Context) {
	Fail(c, code.ErrUnknown, nil)
}
