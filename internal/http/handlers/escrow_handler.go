package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haki-platform/haki-backend/internal/dto"
	"github.com/haki-platform/haki-backend/internal/http/handlers/common"
	"github.com/haki-platform/haki-backend/internal/models"
	"github.com/haki-platform/haki-backend/internal/service"
)

type EscrowHandler struct {
	escrows *service.EscrowService
}

func NewEscrowHandler(escrows *service.EscrowService) *EscrowHandler {
	return &EscrowHandler{escrows: escrows}
}

// Create POST /escrows
func (h *EscrowHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	var req dto.CreateEscrowRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	milestones := make([]models.MilestoneInput, 0, len(req.Milestones))
	for _, m := range req.Milestones {
		milestones = append(milestones, models.MilestoneInput{
			Amount:      m.Amount,
			Description: m.Description,
		})
	}

	escrow, err := h.escrows.Create(c.Request.Context(), userID, role, service.CreateEscrowInput{
		BountyID:    req.BountyID,
		TotalAmount: req.TotalAmount,
		Milestones:  milestones,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, escrow)
}

// Get GET /escrows/:id
func (h *EscrowHandler) Get(c *gin.Context) {
	escrowID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	escrow, err := h.escrows.Get(c.Request.Context(), escrowID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, escrow)
}

// ListMine GET /escrows
func (h *EscrowHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	limit, offset := common.Pagination(c)

	escrows, err := h.escrows.ListByFunder(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{Items: escrows, Limit: limit, Offset: offset})
}

// AdvanceMilestone PATCH /escrows/:id/milestones/:milestoneId
func (h *EscrowHandler) AdvanceMilestone(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	escrowID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	milestoneID, err := common.ParseUUIDParam(c, "milestoneId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.AdvanceMilestoneRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	escrow, err := h.escrows.AdvanceMilestone(c.Request.Context(), userID, escrowID, milestoneID, req.Status, req.Version)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, escrow)
}

// ReleaseMilestone POST /escrows/:id/milestones/:milestoneId/release
func (h *EscrowHandler) ReleaseMilestone(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	escrowID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	milestoneID, err := common.ParseUUIDParam(c, "milestoneId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ReleaseMilestoneRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	escrow, err := h.escrows.ReleaseMilestone(c.Request.Context(), userID, role, escrowID, milestoneID, req.Version)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, escrow)
}

// Refund POST /escrows/:id/refund
func (h *EscrowHandler) Refund(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	escrowID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.RefundEscrowRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	escrow, err := h.escrows.Refund(c.Request.Context(), userID, role, escrowID, req.Version)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, escrow)
}
