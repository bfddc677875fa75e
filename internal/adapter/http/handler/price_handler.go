package handler

import (
	"investment-ledger/internal/adapter/http/dto"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"
	"investment-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// PriceHandler publishes the market quotes the dashboard renders.
type PriceHandler struct {
	board ports.PriceBoard
}

func NewPriceHandler(board ports.PriceBoard) *PriceHandler {
	return &PriceHandler{board: board}
}

// CoinPrices handles GET /api/v1/prices/coins.
func (h *PriceHandler) CoinPrices(c *gin.Context) {
	prices, err := h.board.CoinPrices(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.ErrPriceUnavailable("coins"))
		return
	}
	response.OK(c, dto.QuoteBoardResponse{Base: "USD", Quotes: prices})
}

// ExchangeRates handles GET /api/v1/prices/exchange-rates.
func (h *PriceHandler) ExchangeRates(c *gin.Context) {
	rates, err := h.board.ExchangeRates(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.ErrPriceUnavailable("exchange rates"))
		return
	}
	response.OK(c, dto.QuoteBoardResponse{Base: "USD", Quotes: rates})
}
