package router

import (
	"github.com/gin-gonic/gin"

	"chamahub.app/core/internal/http/handler"
)

func PaymentRouter(router *gin.RouterGroup, handler *handler.PaymentHandler) {
	router.GET("", handler.List)
	router.GET("/:id", handler.Get)
	router.PATCH("/:id", handler.Update)
	router.POST("/stk", handler.InitiateStk)
}
