package utils

import (
	"github.com/gin-gonic/gin"
)

// envelope is the body shape every endpoint answers with
func envelope(status int, message string) gin.H {
	return gin.H{"status": status, "message": message}
}

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	body := envelope(status, message)
	body["data"] = data
	c.JSON(status, body)
}

// JSONError sends a structured error response
func JSONError(c *gin.Context, status int, err error, message string) {
	body := envelope(status, message)
	body["error"] = err.Error()
	c.JSON(status, body)
}

// JSONAbort is JSONError for middleware: the handler chain stops here.
func JSONAbort(c *gin.Context, status int, err error, message string) {
	body := envelope(status, message)
	body["error"] = err.Error()
	c.AbortWithStatusJSON(status, body)
}
