package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haki-platform/haki-backend/internal/dto"
	"github.com/haki-platform/haki-backend/internal/http/handlers/common"
	"github.com/haki-platform/haki-backend/internal/service"
)

type AIHandler struct {
	ai *service.AIService
}

func NewAIHandler(ai *service.AIService) *AIHandler {
	return &AIHandler{ai: ai}
}

// enabled guards the routes when the service runs without an AI backend.
func (h *AIHandler) enabled(c *gin.Context) bool {
	if h.ai == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI features are disabled"})
		return false
	}
	return true
}

// MatchLawyers POST /ai/match
func (h *AIHandler) MatchLawyers(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.MatchLawyersRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	matches, err := h.ai.MatchLawyers(c.Request.Context(), userID, req.BountyID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bounty_id": req.BountyID, "matches": matches})
}

// AnalyzeDocument POST /ai/documents/:id/analyze
func (h *AIHandler) AnalyzeDocument(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	documentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	analysis, err := h.ai.AnalyzeDocument(c.Request.Context(), userID, documentID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// LatestAnalysis GET /ai/documents/:id/analysis
func (h *AIHandler) LatestAnalysis(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	documentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	analysis, err := h.ai.LatestAnalysis(c.Request.Context(), userID, documentID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}
