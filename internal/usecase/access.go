package usecase

import (
	"fmt"
	"strings"

	"crabbox/internal/domain/model"
)

// 呼び出し元（認証済みのウォレットアドレス）
type Caller struct {
	Address string
}

// オーナー判定。オーナーは設定のアドレスで固定。
type AccessControl struct {
	owner string
}

func NewAccessControl(ownerAddress string) AccessControl {
	owner, _ := model.NormalizeAddress(ownerAddress)
	return AccessControl{owner: owner}
}

func (a AccessControl) Owner() string {
	return a.owner
}

func (a AccessControl) IsOwner(address string) bool {
	return a.owner != "" && strings.EqualFold(a.owner, address)
}

func (a AccessControl) RoleOf(address string) model.Role {
	if a.IsOwner(address) {
		return model.RoleOwner
	}
	return model.RoleBuyer
}

// オーナー専用の操作は必ず最初にこれを通す
func (a AccessControl) RequireOwner(c Caller) error {
	if _, err := callerAddress(c); err != nil {
		return err
	}
	if !a.IsOwner(c.Address) {
		return newError(ErrPermissionDenied, "owner only")
	}
	return nil
}

// 呼び出し元アドレスをチェックサム形式にする
func callerAddress(c Caller) (string, error) {
	addr, ok := model.NormalizeAddress(c.Address)
	if !ok {
		return "", newError(ErrUnauthorized, "unauthorized")
	}
	return addr, nil
}

// 預かり口座のアドレス。不正なら組み立て時のミスなのでpanic
func mustServiceAddress(s string) string {
	addr, ok := model.NormalizeAddress(s)
	if !ok {
		panic(fmt.Sprintf("usecase: invalid service address %q", s))
	}
	return addr
}
