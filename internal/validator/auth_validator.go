package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"crabbox/internal/domain/model"
	"crabbox/internal/usecase"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")
)

// 0x + 130桁（r,s,v の65バイト）
var signatureRe = regexp.MustCompile(`^0x[0-9a-fA-F]{130}$`)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// nonce発行の入力を検証
func (v *authValidator) ValidateChallenge(ctx context.Context, address string) error {
	if _, ok := model.NormalizeAddress(strings.TrimSpace(address)); !ok {
		return ErrInvalidInput
	}
	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, address string, signature string) error {
	if err := v.ValidateChallenge(ctx, address); err != nil {
		return err
	}
	if !signatureRe.MatchString(strings.TrimSpace(signature)) {
		return ErrInvalidInput
	}
	return nil
}
