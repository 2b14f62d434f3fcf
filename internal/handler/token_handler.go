package handler

import (
	"net/http"

	"crabbox/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 支払いトークン（残高・許可額・送金・テスト用発行）
type TokenHandler struct {
	uc *usecase.TokenUsecase
}

func NewTokenHandler(uc *usecase.TokenUsecase) *TokenHandler {
	return &TokenHandler{uc: uc}
}

type ApproveRequest struct {
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

type TransferRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (h *TokenHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	e.GET("/token/balance/:address", h.balance)
	e.GET("/token/allowance", h.allowance)

	e.POST("/token/approve", h.approve, g.Auth...)
	e.POST("/token/transfer", h.transfer, g.Auth...)
	e.POST("/admin/token/mint", h.mint, g.Owner...)
}

func (h *TokenHandler) balance(c echo.Context) error {
	out, err := h.uc.BalanceOf(c.Request().Context(), c.Param("address"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TokenHandler) allowance(c echo.Context) error {
	out, err := h.uc.Allowance(c.Request().Context(), c.QueryParam("owner"), c.QueryParam("spender"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TokenHandler) approve(c echo.Context) error {
	var req ApproveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		return badRequest(c, "invalid amount")
	}

	out, err := h.uc.Approve(c.Request().Context(), callerFrom(c), req.Spender, amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TokenHandler) transfer(c echo.Context) error {
	var req TransferRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		return badRequest(c, "invalid amount")
	}

	out, err := h.uc.Transfer(c.Request().Context(), callerFrom(c), req.To, amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TokenHandler) mint(c echo.Context) error {
	var req TransferRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		return badRequest(c, "invalid amount")
	}

	out, err := h.uc.Mint(c.Request().Context(), callerFrom(c), req.To, amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
