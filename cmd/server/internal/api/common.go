package api

import (
	"github.com/gin-gonic/gin"
)

// errorResponse writes an error payload with the given status code.
func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"error": message,
	})
}

// successResponse writes data with status 200.
func successResponse(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

// successResponseWithMessage writes a message plus data with status 200.
func successResponseWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(200, gin.H{
		"message": message,
		"data":    data,
	})
}

// acceptedResponse writes data with status 202 for enqueued work.
func acceptedResponse(c *gin.Context, data interface{}) {
	c.JSON(202, data)
}

// notFoundResponse writes a 404 for the named resource.
func notFoundResponse(c *gin.Context, resource string) {
	c.JSON(404, gin.H{
		"error": resource + " not found",
	})
}

// badRequestResponse writes a 400 with the given message.
func badRequestResponse(c *gin.Context, message string) {
	c.JSON(400, gin.H{
		"error": message,
	})
}

// internalErrorResponse writes a 500 with the error detail.
func internalErrorResponse(c *gin.Context, err error) {
	c.JSON(500, gin.H{
		"error":  "internal server error",
		"detail": err.Error(),
	})
}
