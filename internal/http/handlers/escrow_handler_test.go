package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestEscrowHandler_Create_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &EscrowHandler{escrows: nil}
	r.POST("/escrows", handler.Create)

	req, _ := http.NewRequest("POST", "/escrows", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEscrowHandler_Get_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &EscrowHandler{escrows: nil}
	r.GET("/escrows/:id", handler.Get)

	req, _ := http.NewRequest("GET", "/escrows/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEscrowHandler_ListMine_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &EscrowHandler{escrows: nil}
	r.GET("/escrows", handler.ListMine)

	req, _ := http.NewRequest("GET", "/escrows", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEscrowHandler_AdvanceMilestone_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &EscrowHandler{escrows: nil}
	r.PATCH("/escrows/:id/milestones/:milestoneId", handler.AdvanceMilestone)

	req, _ := http.NewRequest("PATCH", "/escrows/00000000-0000-0000-0000-000000000001/milestones/00000000-0000-0000-0000-000000000002", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEscrowHandler_ReleaseMilestone_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &EscrowHandler{escrows: nil}
	r.POST("/escrows/:id/milestones/:milestoneId/release", handler.ReleaseMilestone)

	req, _ := http.NewRequest("POST", "/escrows/00000000-0000-0000-0000-000000000001/milestones/00000000-0000-0000-0000-000000000002/release", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEscrowHandler_Refund_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &EscrowHandler{escrows: nil}
	r.POST("/escrows/:id/refund", handler.Refund)

	req, _ := http.NewRequest("POST", "/escrows/00000000-0000-0000-0000-000000000001/refund", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
