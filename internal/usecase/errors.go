package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	//403 オーナー以外/購入者以外
	ErrPermissionDenied = errors.New("permission denied")
	//404
	ErrNotFound = errors.New("not found")
	//409 今のステータスではできない操作
	ErrInvalidState = errors.New("invalid state")
	//409 在庫不足
	ErrInsufficientStock = errors.New("insufficient stock")
	//409 非公開の商品
	ErrInactiveProduct = errors.New("inactive product")
	//402 トークンの移動に失敗（残高・許可額・預かり不足）
	ErrPaymentTransferFailed = errors.New("payment transfer failed")
	//409 出金できる残高が無い
	ErrNothingToWithdraw = errors.New("nothing to withdraw")
	//400 入力不正
	ErrValidation = errors.New("validation error")
	//401 認証失敗
	ErrUnauthorized = errors.New("unauthorized")
	//409 競合
	ErrConflict = errors.New("conflict")
	//500
	ErrInternal = errors.New("internal error")
)

var kindStatus = map[error]int{
	ErrPermissionDenied:      http.StatusForbidden,
	ErrNotFound:              http.StatusNotFound,
	ErrInvalidState:          http.StatusConflict,
	ErrInsufficientStock:     http.StatusConflict,
	ErrInactiveProduct:       http.StatusConflict,
	ErrPaymentTransferFailed: http.StatusPaymentRequired,
	ErrNothingToWithdraw:     http.StatusConflict,
	ErrValidation:            http.StatusBadRequest,
	ErrUnauthorized:          http.StatusUnauthorized,
	ErrConflict:              http.StatusConflict,
	ErrInternal:              http.StatusInternalServerError,
}

var kindCode = map[error]string{
	ErrPermissionDenied:      "PERMISSION_DENIED",
	ErrNotFound:              "NOT_FOUND",
	ErrInvalidState:          "INVALID_STATE",
	ErrInsufficientStock:     "INSUFFICIENT_STOCK",
	ErrInactiveProduct:       "INACTIVE_PRODUCT",
	ErrPaymentTransferFailed: "PAYMENT_TRANSFER_FAILED",
	ErrNothingToWithdraw:     "NOTHING_TO_WITHDRAW",
	ErrValidation:            "VALIDATION",
	ErrUnauthorized:          "UNAUTHORIZED",
	ErrConflict:              "CONFLICT",
	ErrInternal:              "INTERNAL",
}

// handlerがそのままレスポンスにできるエラー
type HTTPError struct {
	Status  int
	Message string
	// errors.Isで判定するための種類（上のErrXxxのどれか）
	Kind error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Kind
}

// レスポンスの "code"
func (e *HTTPError) Code() string {
	if c, ok := kindCode[e.Kind]; ok {
		return c
	}
	return "ERROR"
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// 種類からステータスを決めて作る
func newError(kind error, message string) error {
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &HTTPError{Status: status, Message: message, Kind: kind}
}

func dbError() error {
	return newError(ErrInternal, "db error")
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
