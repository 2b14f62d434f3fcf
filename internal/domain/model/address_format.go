package model

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress はEVMアドレスをEIP-55形式にそろえる。
// 形式が不正、またはゼロアドレスなら false。
func NormalizeAddress(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return "", false
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return "", false
	}
	return addr.Hex(), true
}
