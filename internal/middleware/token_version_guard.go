package middleware

import (
	"crabbox/internal/repository"

	"github.com/labstack/echo/v4"
)

// JWTのtvとDBのtoken_versionの一致するか確認。ログアウト済みのトークンはここで弾く。
func TokenVersionGuard(accounts repository.AccountRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			address, ok := c.Get(CtxAddressKey).(string)
			if !ok || address == "" {
				return unauthorized(c)
			}

			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok || tv < 0 {
				return unauthorized(c)
			}

			//DBから最新のアカウントを取得する
			account, err := accounts.FindByAddress(c.Request().Context(), address)
			if err != nil || account == nil || !account.IsActive {
				return unauthorized(c)
			}

			//token_version が一致しなければ強制ログアウト扱い（401）
			if account.TokenVersion != tv {
				return unauthorized(c)
			}

			return next(c)
		}
	}
}
