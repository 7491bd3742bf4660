package router

import (
	"github.com/gin-gonic/gin"

	"chamahub.app/core/internal/http/handler"
	"chamahub.app/core/internal/http/handler/webhook"
	"chamahub.app/core/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Gateway-facing webhooks live outside /api: the gateway posts to the
	// paths registered via RegisterCallbackURLs.
	mpesaHandler := webhook.NewMpesaWebhookHandler(services.Reconciler())
	MpesaRouter(router.Group("/v1/payments"), mpesaHandler)

	v1 := router.Group("/api/v1")
	{
		hierarchyHandler := handler.NewHierarchyHandler(services.Hierarchy())
		HierarchyRouter(v1, hierarchyHandler)

		meetingHandler := handler.NewMeetingHandler(services.Scheduler())
		MeetingRouter(v1.Group("/meetings"), meetingHandler)

		paymentHandler := handler.NewPaymentHandler(services.Reconciler())
		PaymentRouter(v1.Group("/payments"), paymentHandler)
	}
}
