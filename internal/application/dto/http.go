package dto

import (
	"github.com/gin-gonic/gin"
	"github.com/turtacn/tgroups/pkg/constants"
	"github.com/turtacn/tgroups/pkg/errors"
)

// SendSuccess writes body with the given status.
func SendSuccess(c *gin.Context, status int, body interface{}) {
	c.JSON(status, body)
}

// SendError writes err as a Response envelope with the error's HTTP status.
// Errors that are not AppErrors are reported as 500 without their text.
// err is attached to the gin context for the logging and tracing middleware.
func SendError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := 500
	if appErr, ok := errors.AsAppError(err); ok {
		status = appErr.HTTPStatus()
	}
	c.JSON(status, ErrorResponse(err, c.GetString(string(constants.ContextKeyTraceID))))
}
