package repository

import "context"

// 決済トークン（approve / balanceOf / transfer / transferFrom / mint）
type TokenRepository interface {
	BalanceOf(ctx context.Context, address string) (int64, error)
	Allowance(ctx context.Context, owner string, spender string) (int64, error)
	Approve(ctx context.Context, owner string, spender string, amount int64) error
	// 残高不足なら ErrInsufficientBalance
	Transfer(ctx context.Context, from string, to string, amount int64) error
	// 許可額不足なら ErrInsufficientAllowance
	TransferFrom(ctx context.Context, spender string, from string, to string, amount int64) error
	Mint(ctx context.Context, to string, amount int64) error
}
