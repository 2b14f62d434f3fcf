// Package money は6桁小数のトークン金額（最小単位のint64）と表示用文字列の変換を扱う。
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// トークンの小数桁（USDC互換）
const Decimals = 6

var ErrInvalidAmount = errors.New("invalid amount")

// 入力の長さと指数の上限。"1e1000000000" のような値を桁展開する前に弾く
const (
	maxAmountLen = 40
	maxExponent  = 18
	minExponent  = -maxAmountLen
)

// FormatAmount は最小単位の金額を "5" や "0.011" のような文字列にする
func FormatAmount(units int64) string {
	return decimal.New(units, -Decimals).String()
}

// ParseAmount は "5.00" のような表記を最小単位に変換する。
// 負数、7桁以上の小数、int64に収まらない値はエラー。
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxAmountLen {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	//Shift/BigIntは指数ぶんの計算をするので先に範囲を見る
	if exp := d.Exponent(); exp > maxExponent || exp < minExponent {
		return 0, ErrInvalidAmount
	}
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	scaled := d.Shift(Decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, ErrInvalidAmount
	}
	if !scaled.BigInt().IsInt64() {
		return 0, ErrInvalidAmount
	}
	return scaled.IntPart(), nil
}

// MulQuantity は単価×数量。オーバーフローなら false。
func MulQuantity(unitPrice int64, quantity int64) (int64, bool) {
	if unitPrice < 0 || quantity < 0 {
		return 0, false
	}
	if unitPrice == 0 || quantity == 0 {
		return 0, true
	}
	total := unitPrice * quantity
	if total/quantity != unitPrice {
		return 0, false
	}
	return total, true
}
