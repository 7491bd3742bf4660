package router

import (
	"github.com/gin-gonic/gin"

	"chamahub.app/core/internal/http/handler"
)

func HierarchyRouter(router *gin.RouterGroup, handler *handler.HierarchyHandler) {
	umbrellas := router.Group("/umbrellas")
	{
		umbrellas.POST("", handler.CreateUmbrella)
		umbrellas.GET("", handler.ListUmbrellas)
		umbrellas.GET("/:id", handler.GetUmbrella)
		umbrellas.GET("/:id/blocks", handler.ListBlocks)
	}

	blocks := router.Group("/blocks")
	{
		blocks.POST("", handler.CreateBlock)
		blocks.GET("/:id", handler.GetBlock)
		blocks.GET("/:id/zones", handler.ListZones)
		blocks.POST("/:id/roles", handler.AssignRole)
		blocks.DELETE("/:id/roles/:role", handler.RevokeRole)
	}

	router.POST("/zones", handler.CreateZone)

	members := router.Group("/members")
	{
		members.POST("", handler.RegisterMember)
		members.GET("/:id", handler.GetMember)
		members.POST("/:id/approve", handler.ApproveMember)
		members.PUT("/:id/zones/:zone_id", handler.AddMemberToZone)
		members.DELETE("/:id/zones/:zone_id", handler.RemoveMemberFromZone)
		members.PUT("/:id/blocks/:block_id", handler.AddMemberToBlock)
		members.DELETE("/:id/blocks/:block_id", handler.RemoveMemberFromBlock)
	}
}
