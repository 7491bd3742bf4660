package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chamahub.app/core/internal/http/dto"
	"chamahub.app/core/internal/model"
	"chamahub.app/core/internal/service"
)

type HierarchyHandler struct {
	hierarchy service.HierarchyService
}

func NewHierarchyHandler(hierarchy service.HierarchyService) *HierarchyHandler {
	return &HierarchyHandler{hierarchy: hierarchy}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func (h *HierarchyHandler) CreateUmbrella(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateUmbrellaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	umbrella, err := h.hierarchy.CreateUmbrella(ctx, req.Name, req.Location, req.CreatedBy)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUmbrellaResponse(umbrella))
}

func (h *HierarchyHandler) GetUmbrella(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	umbrella, err := h.hierarchy.GetUmbrella(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUmbrellaResponse(umbrella))
}

func (h *HierarchyHandler) ListUmbrellas(c *gin.Context) {
	umbrellas, err := h.hierarchy.ListUmbrellas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.UmbrellaResponse, len(umbrellas))
	for i := range umbrellas {
		out[i] = *dto.ToUmbrellaResponse(&umbrellas[i])
	}
	c.JSON(http.StatusOK, gin.H{"umbrellas": out})
}

func (h *HierarchyHandler) CreateBlock(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	block, err := h.hierarchy.CreateBlock(ctx, req.UmbrellaID, req.Name, req.CreatedBy)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBlockResponse(block))
}

func (h *HierarchyHandler) GetBlock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	block, err := h.hierarchy.GetBlock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBlockResponse(block))
}

func (h *HierarchyHandler) ListBlocks(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	blocks, err := h.hierarchy.ListBlocks(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.BlockResponse, len(blocks))
	for i := range blocks {
		out[i] = *dto.ToBlockResponse(&blocks[i])
	}
	c.JSON(http.StatusOK, gin.H{"blocks": out})
}

func (h *HierarchyHandler) CreateZone(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	zone, err := h.hierarchy.CreateZone(ctx, req.BlockID, req.Name, req.CreatedBy)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToZoneResponse(zone))
}

func (h *HierarchyHandler) ListZones(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	zones, err := h.hierarchy.ListZones(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.ZoneResponse, len(zones))
	for i := range zones {
		out[i] = *dto.ToZoneResponse(&zones[i])
	}
	c.JSON(http.StatusOK, gin.H{"zones": out})
}

func (h *HierarchyHandler) RegisterMember(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.hierarchy.RegisterMember(ctx, service.RegisterMemberInput{
		FullName:      req.FullName,
		NationalID:    req.NationalID,
		Phone:         req.Phone,
		BankID:        req.BankID,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMemberResponse(member))
}

func (h *HierarchyHandler) GetMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	member, err := h.hierarchy.GetMember(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberResponse(member))
}

func (h *HierarchyHandler) ApproveMember(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ApproveMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.hierarchy.ApproveMember(ctx, id, req.ApprovedBy); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

func (h *HierarchyHandler) AddMemberToZone(c *gin.Context) {
	memberID, ok := pathID(c, "id")
	if !ok {
		return
	}
	zoneID, ok := pathID(c, "zone_id")
	if !ok {
		return
	}

	if err := h.hierarchy.AddMemberToZone(c.Request.Context(), memberID, zoneID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HierarchyHandler) RemoveMemberFromZone(c *gin.Context) {
	memberID, ok := pathID(c, "id")
	if !ok {
		return
	}
	zoneID, ok := pathID(c, "zone_id")
	if !ok {
		return
	}

	if err := h.hierarchy.RemoveMemberFromZone(c.Request.Context(), memberID, zoneID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HierarchyHandler) AddMemberToBlock(c *gin.Context) {
	memberID, ok := pathID(c, "id")
	if !ok {
		return
	}
	blockID, ok := pathID(c, "block_id")
	if !ok {
		return
	}

	if err := h.hierarchy.AddMemberToBlock(c.Request.Context(), memberID, blockID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HierarchyHandler) RemoveMemberFromBlock(c *gin.Context) {
	memberID, ok := pathID(c, "id")
	if !ok {
		return
	}
	blockID, ok := pathID(c, "block_id")
	if !ok {
		return
	}

	if err := h.hierarchy.RemoveMemberFromBlock(c.Request.Context(), memberID, blockID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HierarchyHandler) AssignRole(c *gin.Context) {
	ctx := c.Request.Context()

	blockID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.hierarchy.AssignRole(ctx, req.MemberID, blockID, model.Role(req.Role)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "assigned"})
}

func (h *HierarchyHandler) RevokeRole(c *gin.Context) {
	ctx := c.Request.Context()

	blockID, ok := pathID(c, "id")
	if !ok {
		return
	}

	role := model.Role(c.Param("role"))
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	memberID, err := strconv.ParseInt(c.Query("member_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member_id"})
		return
	}

	if err := h.hierarchy.RevokeRole(ctx, memberID, blockID, role); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}
