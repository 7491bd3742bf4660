package router

import (
	"github.com/gin-gonic/gin"

	"chamahub.app/core/internal/http/handler"
)

func MeetingRouter(router *gin.RouterGroup, handler *handler.MeetingHandler) {
	router.POST("", handler.Schedule)
	router.GET("", handler.List)
	router.GET("/current", handler.Current)
	router.GET("/:id", handler.Get)
	router.PATCH("/:id", handler.Update)
	router.DELETE("/:id", handler.Delete)
}
