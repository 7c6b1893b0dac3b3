package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haki-platform/haki-backend/internal/dto"
	"github.com/haki-platform/haki-backend/internal/http/handlers/common"
	"github.com/haki-platform/haki-backend/internal/service"
)

type ReputationHandler struct {
	reputation *service.ReputationService
}

func NewReputationHandler(reputation *service.ReputationService) *ReputationHandler {
	return &ReputationHandler{reputation: reputation}
}

// ListAwards GET /reputation/:lawyerId/awards
func (h *ReputationHandler) ListAwards(c *gin.Context) {
	lawyerID, err := common.ParseUUIDParam(c, "lawyerId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	limit, offset := common.Pagination(c)

	awards, err := h.reputation.Awards(c.Request.Context(), lawyerID, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{Items: awards, Limit: limit, Offset: offset})
}

// TotalPoints GET /reputation/:lawyerId
func (h *ReputationHandler) TotalPoints(c *gin.Context) {
	lawyerID, err := common.ParseUUIDParam(c, "lawyerId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	points, err := h.reputation.TotalPoints(c.Request.Context(), lawyerID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lawyer_id": lawyerID, "points": points})
}
