package utils

import (
	"github.com/gin-gonic/gin"

	"server-identity/internal/schemas"
)

// WriteAndLogResponse writes the response object as JSON with the given
// status code and logs the outcome with the request's trace id.
func WriteAndLogResponse(c *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(c, "info", "Returning response")
	c.JSON(statusCode, response)
}

// WriteAndLogError logs the underlying error and sends the client-facing
// error payload with the given status code. The underlying error never
// reaches the client.
func WriteAndLogError(c *gin.Context, customErr *schemas.CustomError, statusCode int, err error, failures ...string) {
	LogMessageWithFields(c, "error", "Error occurred: "+err.Error())
	LogMessageWithFields(c, "error", "Returning "+customErr.Code+" / "+customErr.Message)
	c.JSON(statusCode, &schemas.ErrorDTO{Error: *customErr, Failures: failures})
}
