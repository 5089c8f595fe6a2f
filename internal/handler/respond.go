package handler

import (
	"github.com/gin-gonic/gin"

	"safety-studio/internal/apperr"
	"safety-studio/internal/logger"
)

// fail converts a service error into the JSON error envelope. Raw causes
// are logged; only the sanitized message (plus a truncated debug field on
// 400s) reaches the client.
func fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	logger.Error("request failed", "path", c.FullPath(), "status", status, "err", err)

	body := gin.H{"error": apperr.Message(err)}
	if status == 400 {
		if debug := apperr.DebugField(err); debug != "" {
			body["debug"] = debug
		}
	}
	c.JSON(status, body)
}

func userID(c *gin.Context) string {
	return c.GetString("user_name")
}
