package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// トークン残高不足
	ErrInsufficientBalance = errors.New("insufficient token balance")

	// 引き落とし許可額の不足
	ErrInsufficientAllowance = errors.New("insufficient token allowance")

	// 一意制約違反（同じ冪等キーなど）
	ErrDuplicate = errors.New("duplicate")
)
