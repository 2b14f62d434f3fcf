package handler

import (
	"net/http"

	"crabbox/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ウォレット署名ログインとオーナー情報
type AuthHandler struct {
	uc     *usecase.AuthUsecase
	access usecase.AccessControl
}

func NewAuthHandler(uc *usecase.AuthUsecase, access usecase.AccessControl) *AuthHandler {
	return &AuthHandler{uc: uc, access: access}
}

// /auth/challenge のリクエストボディ。
type challengeRequest struct {
	Address string `json:"address"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

type ownerResponse struct {
	Owner string `json:"owner"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	e.GET("/owner", h.owner)
	e.POST("/auth/challenge", h.challenge)
	e.POST("/auth/login", h.login)

	e.POST("/auth/logout", h.logout, g.Auth...)
	e.GET("/me", h.me, g.Auth...)
}

func (h *AuthHandler) owner(c echo.Context) error {
	return c.JSON(http.StatusOK, ownerResponse{Owner: h.access.Owner()})
}

func (h *AuthHandler) challenge(c echo.Context) error {
	var req challengeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Challenge(c.Request().Context(), req.Address)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Login(c.Request().Context(), req.Address, req.Signature)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) logout(c echo.Context) error {
	out, err := h.uc.Logout(c.Request().Context(), callerFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) me(c echo.Context) error {
	out, err := h.uc.Me(c.Request().Context(), callerFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
