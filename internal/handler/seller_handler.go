package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"crabbox/internal/domain/model"
	"crabbox/internal/repository"
	"crabbox/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin 以下のオーナー操作（発送・返金・出金・一覧）
type SellerHandler struct {
	uc *usecase.SellerUsecase
}

func NewSellerHandler(uc *usecase.SellerUsecase) *SellerHandler {
	return &SellerHandler{uc: uc}
}

type FulfillRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

type ApproveRefundRequest struct {
	// "5.00" のような表記
	Amount string `json:"amount"`
}

func (h *SellerHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	admin := e.Group("/admin", g.Owner...)

	admin.GET("/orders", h.listOrders)
	admin.POST("/orders/:id/fulfill", h.fulfill)
	admin.POST("/orders/:id/refund/approve", h.approveRefund)
	admin.POST("/orders/:id/refund/reject", h.rejectRefund)
	admin.POST("/withdraw", h.withdraw)
	admin.GET("/ledger", h.ledger)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *SellerHandler) fulfill(c echo.Context) error {
	id, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req FulfillRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.FulfillOrder(c.Request().Context(), callerFrom(c), id, req.TrackingNumber)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SellerHandler) approveRefund(c echo.Context) error {
	id, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req ApproveRefundRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		return badRequest(c, "invalid amount")
	}

	out, err := h.uc.ApproveRefund(c.Request().Context(), callerFrom(c), id, amount)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SellerHandler) rejectRefund(c echo.Context) error {
	id, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.uc.RejectRefund(c.Request().Context(), callerFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SellerHandler) withdraw(c echo.Context) error {
	out, err := h.uc.Withdraw(c.Request().Context(), callerFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SellerHandler) listOrders(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}

	f := repository.AdminOrderListFilter{
		Page:  page,
		Limit: limit,
		Buyer: c.QueryParam("buyer"),
	}

	//ステータスは名前（PENDING）でも数値（0）でも受ける
	if v := c.QueryParam("status"); v != "" {
		st, ok := parseStatus(v)
		if !ok {
			return badRequest(c, "invalid status")
		}
		f.Status = &st
	}

	from, ok := queryTime(c, "from")
	if !ok {
		return badRequest(c, "invalid from")
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return badRequest(c, "invalid to")
	}
	f.From, f.To = from, to

	out, err := h.uc.ListOrders(c.Request().Context(), callerFrom(c), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SellerHandler) ledger(c echo.Context) error {
	limit, ok := queryInt(c, "limit", 50)
	if !ok || limit < 1 || limit > 200 {
		return badRequest(c, "invalid limit")
	}

	out, err := h.uc.LedgerSummary(c.Request().Context(), callerFrom(c), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SellerHandler) auditLogs(c echo.Context) error {
	limit, ok := queryInt(c, "limit", 50)
	if !ok || limit < 1 || limit > 200 {
		return badRequest(c, "invalid limit")
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok || offset < 0 {
		return badRequest(c, "invalid offset")
	}

	f := repository.AuditLogFilter{
		Limit:  limit,
		Offset: offset,
	}
	if v := c.QueryParam("actor"); v != "" {
		addr, ok := model.NormalizeAddress(v)
		if !ok {
			return badRequest(c, "invalid actor")
		}
		f.ActorAddress = addr
	}
	if v := c.QueryParam("involving"); v != "" {
		addr, ok := model.NormalizeAddress(v)
		if !ok {
			return badRequest(c, "invalid involving")
		}
		f.Involving = addr
	}
	//action=WITHDRAW,APPROVE_REFUND のようにカンマ区切り
	if v := c.QueryParam("action"); v != "" {
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				f.Actions = append(f.Actions, model.AuditAction(strings.ToUpper(a)))
			}
		}
	}
	if v := c.QueryParam("money"); v != "" {
		money, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest(c, "invalid money")
		}
		f.MoneyMovementsOnly = money
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(strings.ToLower(v))
		f.ResourceType = &rt
	}
	if v := c.QueryParam("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid resource_id")
		}
		f.ResourceID = &id
	}

	from, ok := queryTime(c, "from")
	if !ok {
		return badRequest(c, "invalid from")
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return badRequest(c, "invalid to")
	}
	f.CreatedFrom, f.CreatedTo = from, to

	out, err := h.uc.ListAuditLogs(c.Request().Context(), callerFrom(c), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func parseStatus(v string) (model.OrderStatus, bool) {
	if n, err := strconv.Atoi(v); err == nil {
		if n < int(model.OrderStatusPending) || n > int(model.OrderStatusRefundRejected) {
			return 0, false
		}
		return model.OrderStatus(n), true
	}
	return model.ParseOrderStatus(strings.ToUpper(v))
}

// RFC3339。空ならnil
func queryTime(c echo.Context, name string) (*time.Time, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	tm, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, false
	}
	return &tm, true
}
