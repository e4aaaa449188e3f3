package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/osmelmr/nodosiot-server/internal/domain/services"
	"github.com/osmelmr/nodosiot-server/internal/error/response"
)

// ErrorResponse documents the error envelope for swagger
type ErrorResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// parseIDParam reads the :id path parameter. On failure it writes the
// parameter error response and returns false.
func parseIDParam(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.ParamError(ctx, "invalid id parameter")
		return 0, false
	}
	return uint(id), true
}

// parseUintQuery reads an optional unsigned query parameter, 0 when absent
// or malformed. Malformed filters widen results instead of failing.
func parseUintQuery(ctx *gin.Context, name string) uint {
	v, err := strconv.ParseUint(ctx.Query(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

// currentPrincipal reads the authenticated caller set by the auth
// middleware. Routes behind Authentication always have one; the guard is
// for misconfigured route tables.
func currentPrincipal(ctx *gin.Context) (services.Principal, bool) {
	v, exists := ctx.Get("principal")
	if !exists {
		response.Unauthorized(ctx)
		ctx.Abort()
		return services.Principal{}, false
	}
	p, ok := v.(services.Principal)
	if !ok {
		response.Unauthorized(ctx)
		ctx.Abort()
		return services.Principal{}, false
	}
	return p, true
}
