package router

import (
	"github.com/gin-gonic/gin"

	"chamahub.app/core/internal/http/handler/webhook"
)

func MpesaRouter(router *gin.RouterGroup, handler *webhook.MpesaWebhookHandler) {
	router.POST("/c2b/validation", handler.Validation)
	router.POST("/c2b/confirmation", handler.Confirmation)
	router.POST("/stk/callback", handler.StkCallback)
}
