package usecase

import (
	"context"
	"errors"
	"time"

	"crabbox/internal/config"
	"crabbox/internal/domain/model"
	"crabbox/internal/infra/wallet"
	"crabbox/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateChallenge(ctx context.Context, address string) error
	ValidateLogin(ctx context.Context, address string, signature string) error
}

type AccountDTO struct {
	Address      string     `json:"address"`
	Role         string     `json:"role"`
	TokenVersion int        `json:"token_version"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

type JwtAccessTokenDTO struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type ChallengeOutput struct {
	Address   string    `json:"address"`
	Nonce     string    `json:"nonce"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthLoginResponse struct {
	Account AccountDTO        `json:"account"`
	Token   JwtAccessTokenDTO `json:"token"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type AuthUsecase struct {
	cfg       config.Auth
	access    AccessControl
	accounts  repository.AccountRepository
	nonces    repository.NonceStore
	validator AuthValidator
	log       *zap.Logger
}

func NewAuthUsecase(
	cfg config.Auth,
	access AccessControl,
	accounts repository.AccountRepository,
	nonces repository.NonceStore,
	validator AuthValidator,
	log *zap.Logger,
) *AuthUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthUsecase{
		cfg:       cfg,
		access:    access,
		accounts:  accounts,
		nonces:    nonces,
		validator: validator,
		log:       log,
	}
}

// 署名してもらう文面とnonceを発行（古いnonceは上書き）
func (u *AuthUsecase) Challenge(ctx context.Context, address string) (*ChallengeOutput, error) {
	if err := u.validator.ValidateChallenge(ctx, address); err != nil {
		return nil, newError(ErrValidation, "invalid address")
	}
	addr, _ := model.NormalizeAddress(address)

	nonce := uuid.NewString()
	if err := u.nonces.Put(ctx, addr, nonce, u.cfg.LoginNonceTTL); err != nil {
		return nil, newError(ErrInternal, "nonce store error")
	}

	return &ChallengeOutput{
		Address:   addr,
		Nonce:     nonce,
		Message:   wallet.LoginMessage(addr, nonce),
		ExpiresAt: time.Now().Add(u.cfg.LoginNonceTTL),
	}, nil
}

// 署名を検証してJWTを発行する
func (u *AuthUsecase) Login(ctx context.Context, address string, signature string) (*AuthLoginResponse, error) {
	// 1) 入力検証
	if err := u.validator.ValidateLogin(ctx, address, signature); err != nil {
		return nil, newError(ErrValidation, "invalid address or signature")
	}
	addr, _ := model.NormalizeAddress(address)

	//nonceは1回だけ使える
	nonce, err := u.nonces.Consume(ctx, addr)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrUnauthorized, "challenge expired or not found")
	}
	if err != nil {
		return nil, newError(ErrInternal, "nonce store error")
	}

	//署名者の確認
	if err := wallet.Verify(addr, wallet.LoginMessage(addr, nonce), signature); err != nil {
		return nil, newError(ErrUnauthorized, "signature mismatch")
	}

	now := time.Now()
	account, err := u.accounts.FindByAddress(ctx, addr)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		//初回ログインで作成
		account = &model.Account{Address: addr, IsActive: true, LastLoginAt: &now}
		if err := u.accounts.Create(ctx, account); err != nil {
			return nil, newError(ErrConflict, "account create failed")
		}
	case err != nil:
		return nil, dbError()
	default:
		//停止アカウントはログイン不可
		if !account.IsActive {
			return nil, newError(ErrPermissionDenied, "account is inactive")
		}
		//last_login更新
		account.LastLoginAt = &now
		_ = u.accounts.Update(ctx, account)
	}

	accessToken, expiresIn, err := u.issueAccessToken(account, now)
	if err != nil {
		return nil, newError(ErrInternal, "token issue failed")
	}

	u.log.Info("login", zap.String("address", addr), zap.String("role", string(u.access.RoleOf(addr))))
	return &AuthLoginResponse{
		Account: u.toAccountDTO(account),
		Token: JwtAccessTokenDTO{
			AccessToken:  accessToken,
			ExpiresIn:    expiresIn,
			TokenVersion: account.TokenVersion,
		},
	}, nil
}

// token_versionを上げて発行済みのJWTを全部無効にする
func (u *AuthUsecase) Logout(ctx context.Context, caller Caller) (*SuccessResponse, error) {
	addr, err := callerAddress(caller)
	if err != nil {
		return nil, err
	}
	if err := u.accounts.IncrementTokenVersion(ctx, addr); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrUnauthorized, "unauthorized")
		}
		return nil, dbError()
	}
	return &SuccessResponse{Message: "logged out"}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, caller Caller) (*AccountDTO, error) {
	addr, err := callerAddress(caller)
	if err != nil {
		return nil, err
	}
	account, err := u.accounts.FindByAddress(ctx, addr)
	if err != nil {
		return nil, newError(ErrUnauthorized, "unauthorized")
	}
	if !account.IsActive {
		return nil, newError(ErrPermissionDenied, "account is inactive")
	}
	dto := u.toAccountDTO(account)
	return &dto, nil
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(account *model.Account, now time.Time) (string, int, error) {
	exp := now.Add(u.cfg.AccessTokenTTL)

	claims := jwt.MapClaims{
		"sub":  account.Address,
		"role": string(u.access.RoleOf(account.Address)),
		"tv":   account.TokenVersion,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}

	return signed, int(u.cfg.AccessTokenTTL.Seconds()), nil
}

func (u *AuthUsecase) toAccountDTO(a *model.Account) AccountDTO {
	return AccountDTO{
		Address:      a.Address,
		Role:         string(u.access.RoleOf(a.Address)),
		TokenVersion: a.TokenVersion,
		IsActive:     a.IsActive,
		LastLoginAt:  a.LastLoginAt,
	}
}
