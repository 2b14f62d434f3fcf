package handler

import (
	"crabbox/internal/middleware"
	"crabbox/internal/repository"

	"github.com/labstack/echo/v4"
)

// ルートに付ける認証ミドルウェアの組
type Guards struct {
	// JWT + token_version
	Auth []echo.MiddlewareFunc
	// Auth + OWNERロール
	Owner []echo.MiddlewareFunc
}

func NewGuards(jwtSecret string, accounts repository.AccountRepository) Guards {
	auth := []echo.MiddlewareFunc{
		middleware.AuthJWT(jwtSecret),
		middleware.TokenVersionGuard(accounts),
	}
	owner := append(append([]echo.MiddlewareFunc{}, auth...), middleware.OwnerRoleGuard())
	return Guards{Auth: auth, Owner: owner}
}
