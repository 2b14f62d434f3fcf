package handler

import (
	"net/http"

	"crabbox/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderCreateRequest struct {
	GiftBoxID    int64  `json:"gift_box_id"`
	Quantity     int64  `json:"quantity"`
	ShippingInfo string `json:"shipping_info"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	e.GET("/orders/next-id", h.nextID)
	e.GET("/orders/:id", h.detail)

	e.POST("/orders", h.create, g.Auth...)
	e.POST("/orders/:id/refund-request", h.requestRefund, g.Auth...)
	e.GET("/me/orders", h.listMine, g.Auth...)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := c.Request().Header.Get("X-Idempotency-Key")

	out, err := h.uc.BuyGiftBox(c.Request().Context(), callerFrom(c), usecase.BuyGiftBoxInput{
		GiftBoxID:      req.GiftBoxID,
		Quantity:       req.Quantity,
		ShippingInfo:   req.ShippingInfo,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) listMine(c echo.Context) error {
	out, err := h.uc.ListMyOrders(c.Request().Context(), callerFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) nextID(c echo.Context) error {
	id, err := h.uc.NextOrderID(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, nextIDResponse{NextID: id})
}

func (h *OrderHandler) requestRefund(c echo.Context) error {
	id, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.RequestRefund(c.Request().Context(), callerFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
