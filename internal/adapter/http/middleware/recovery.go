package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"userapp/internal/adapter/http/helper"
)

// Recovery renders panics through the regular error envelope.
func Recovery(responder *helper.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				responder.SendPanic(c, recovered, debug.Stack())
			}
		}()

		c.Next()
	}
}
