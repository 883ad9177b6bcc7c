package admin

import (
	handlershared "github.com/dujiao-next/orderdesk/internal/http/handlers/shared"
	"github.com/dujiao-next/orderdesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func respondServiceError(c *gin.Context, err error) {
	handlershared.RespondServiceError(c, err)
}

func getCaller(c *gin.Context) (service.Caller, bool) {
	return handlershared.GetCaller(c)
}
