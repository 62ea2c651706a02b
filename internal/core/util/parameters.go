package util

import (
	"github.com/gin-gonic/gin"

	"userapp/internal/core/apperror"
)

// ParamsToMap binds the JSON body into T. A body that is not valid JSON for
// T is an InvalidArgument.
func ParamsToMap[T any](c *gin.Context) (T, error) {
	var params T

	if err := c.ShouldBindJSON(&params); err != nil {
		return params, apperror.Wrap(apperror.KindInvalidArgument, "request body is not valid JSON", err)
	}

	return params, nil
}
