package handler

import (
	"net/http"
	"strconv"
	"strings"

	"crabbox/internal/domain/money"
	"crabbox/internal/middleware"
	"crabbox/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Code: he.Code()})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "INTERNAL"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "VALIDATION"})
}

// AuthJWTが入れたアドレスを呼び出し元にする
func callerFrom(c echo.Context) usecase.Caller {
	address, _ := c.Get(middleware.CtxAddressKey).(string)
	return usecase.Caller{Address: address}
}

func parseIDParam(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// 金額は "5.00" のような表記で受け取る
func parseAmount(s string) (int64, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, false
	}
	v, err := money.ParseAmount(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func queryInt(c echo.Context, name string, def int) (int, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

type nextIDResponse struct {
	NextID int64 `json:"next_id"`
}
