package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenericErrorMessage is the only error detail a client ever sees.
const GenericErrorMessage = "An error occurred."

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Recovery turns a panic into a logged 500 with a generic JSON body.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		logger.Error("panic while handling request",
			zap.Any("panic", err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(RequestIDKey)),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: GenericErrorMessage})
	})
}
