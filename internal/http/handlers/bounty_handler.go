package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/haki-platform/haki-backend/internal/dto"
	"github.com/haki-platform/haki-backend/internal/http/handlers/common"
	"github.com/haki-platform/haki-backend/internal/models"
	"github.com/haki-platform/haki-backend/internal/pkg/apperror"
	"github.com/haki-platform/haki-backend/internal/service"
)

type BountyHandler struct {
	bounties *service.BountyService
	escrows  *service.EscrowService
}

func NewBountyHandler(bounties *service.BountyService, escrows *service.EscrowService) *BountyHandler {
	return &BountyHandler{bounties: bounties, escrows: escrows}
}

// Create POST /bounties
func (h *BountyHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	var req dto.CreateBountyRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bounty, err := h.bounties.Create(c.Request.Context(), userID, role, service.CreateBountyInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		RequiredSkills: req.RequiredSkills,
		Location:       req.Location,
		TotalAmount:    req.TotalAmount,
		DueDate:        req.DueDate,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, bounty)
}

// Get GET /bounties/:id
func (h *BountyHandler) Get(c *gin.Context) {
	bountyID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bounty, err := h.bounties.Get(c.Request.Context(), bountyID)
	if err != nil {
		c.Error(err)
		return
	}

	// The escrow is attached when the bounty has been funded.
	escrow, err := h.escrows.GetByBounty(c.Request.Context(), bountyID)
	if err != nil {
		escrow = nil
	}

	c.JSON(http.StatusOK, dto.NewBountyResponse(bounty, escrow))
}

// List GET /bounties
func (h *BountyHandler) List(c *gin.Context) {
	limit, offset := common.Pagination(c)

	filter := models.BountyFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Limit:    limit,
		Offset:   offset,
	}
	if raw := c.Query("ngo_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "invalid ngo_id")
			return
		}
		filter.NGOID = &id
	}
	if raw := c.Query("lawyer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "invalid lawyer_id")
			return
		}
		filter.LawyerID = &id
	}

	bounties, err := h.bounties.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{Items: bounties, Limit: limit, Offset: offset})
}

// Update PUT /bounties/:id
func (h *BountyHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	bountyID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateBountyRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bounty, err := h.bounties.Update(c.Request.Context(), userID, bountyID, service.UpdateBountyInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		RequiredSkills: req.RequiredSkills,
		Location:       req.Location,
		DueDate:        req.DueDate,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, bounty)
}

// Assign POST /bounties/:id/assign
func (h *BountyHandler) Assign(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	bountyID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.AssignBountyRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bounty, err := h.bounties.Assign(c.Request.Context(), userID, bountyID, req.LawyerID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, bounty)
}

// Delete DELETE /bounties/:id
func (h *BountyHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	bountyID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.bounties.Delete(c.Request.Context(), userID, bountyID); err != nil {
		if apperror.IsForbidden(err) {
			common.RespondForbidden(c, "")
			return
		}
		c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "bounty deleted", nil)
}
