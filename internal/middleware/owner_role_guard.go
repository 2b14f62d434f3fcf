package middleware

import (
	"net/http"

	"crabbox/internal/domain/model"

	"github.com/labstack/echo/v4"
)

//contextに入っているroleがOWNERかどうかを確認します。
//usecase側でもアドレスで再確認する。

func OwnerRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRoleKey).(string)
			if !ok || role == "" {
				return unauthorized(c)
			}

			//BUYERは拒否、OWNERだけ許可
			if role != string(model.RoleOwner) {
				return c.JSON(http.StatusForbidden, errorResponse{Error: "owner only", Code: "PERMISSION_DENIED"})
			}

			return next(c)
		}
	}
}
