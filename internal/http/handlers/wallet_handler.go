package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haki-platform/haki-backend/internal/dto"
	"github.com/haki-platform/haki-backend/internal/http/handlers/common"
	"github.com/haki-platform/haki-backend/internal/service"
)

type WalletHandler struct {
	wallets *service.WalletService
}

func NewWalletHandler(wallets *service.WalletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// Balance GET /wallet/balance
func (h *WalletHandler) Balance(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	balance, err := h.wallets.Balance(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// Transactions GET /wallet/transactions
func (h *WalletHandler) Transactions(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	limit, offset := common.Pagination(c)

	transactions, err := h.wallets.Transactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{Items: transactions, Limit: limit, Offset: offset})
}

// ExplorerAccount GET /explorer/accounts/:account
func (h *WalletHandler) ExplorerAccount(c *gin.Context) {
	account := c.Param("account")

	balance, err := h.wallets.ExplorerAccount(c.Request.Context(), account)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// ExplorerTransaction GET /explorer/transactions/:txId
func (h *WalletHandler) ExplorerTransaction(c *gin.Context) {
	txID := c.Param("txId")

	tx, err := h.wallets.ExplorerTransaction(c.Request.Context(), txID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// TokenInfo GET /tokens/reputation
func (h *WalletHandler) TokenInfo(c *gin.Context) {
	info, err := h.wallets.TokenInfo(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, info)
}
