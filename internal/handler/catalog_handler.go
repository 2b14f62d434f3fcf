package handler

import (
	"net/http"

	"crabbox/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /giftboxes の公開APIとオーナーの商品登録
type CatalogHandler struct {
	uc *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

type GiftBoxUpsertRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// "5.00" のような表記
	Price  string `json:"price"`
	Stock  int64  `json:"stock"`
	Active bool   `json:"active"`
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	e.GET("/giftboxes", h.list)
	e.GET("/giftboxes/next-id", h.nextID)
	e.GET("/giftboxes/:id", h.detail)

	e.PUT("/admin/giftboxes/:id", h.upsert, g.Owner...)
}

func (h *CatalogHandler) list(c echo.Context) error {
	// page（default 1）
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}
	// limit（default 20）
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return badRequest(c, "invalid limit")
	}

	var minPrice *int64
	if v := c.QueryParam("min_price"); v != "" {
		x, ok := parseAmount(v)
		if !ok {
			return badRequest(c, "invalid min_price")
		}
		minPrice = &x
	}

	var maxPrice *int64
	if v := c.QueryParam("max_price"); v != "" {
		x, ok := parseAmount(v)
		if !ok {
			return badRequest(c, "invalid max_price")
		}
		maxPrice = &x
	}

	out, err := h.uc.ListActive(c.Request().Context(), usecase.ListGiftBoxesInput{
		Page:     page,
		Limit:    limit,
		Q:        c.QueryParam("q"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Sort:     c.QueryParam("sort"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.GetGiftBox(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) nextID(c echo.Context) error {
	id, err := h.uc.NextGiftBoxID(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, nextIDResponse{NextID: id})
}

func (h *CatalogHandler) upsert(c echo.Context) error {
	id, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req GiftBoxUpsertRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	price, ok := parseAmount(req.Price)
	if !ok {
		return badRequest(c, "invalid price")
	}

	out, err := h.uc.UpsertGiftBox(c.Request().Context(), callerFrom(c), usecase.UpsertGiftBoxInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		Active:      req.Active,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
