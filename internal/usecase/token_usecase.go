package usecase

import (
	"context"
	"time"

	"crabbox/internal/domain/model"
	"crabbox/internal/domain/money"
	repo "crabbox/internal/repository"

	"go.uber.org/zap"
)

// 決済トークンの操作（approve / balanceOf / transfer と、テスト用のmint）
type TokenUsecase struct {
	tx            repo.TransactionManager
	access        AccessControl
	faucetEnabled bool
	log           *zap.Logger
}

func NewTokenUsecase(tx repo.TransactionManager, access AccessControl, faucetEnabled bool, log *zap.Logger) *TokenUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &TokenUsecase{tx: tx, access: access, faucetEnabled: faucetEnabled, log: log}
}

type BalanceOutput struct {
	Address        string `json:"address"`
	Balance        int64  `json:"balance"`
	BalanceDisplay string `json:"balance_display"`
}

type AllowanceOutput struct {
	Owner         string `json:"owner"`
	Spender       string `json:"spender"`
	Amount        int64  `json:"amount"`
	AmountDisplay string `json:"amount_display"`
}

func (u *TokenUsecase) BalanceOf(ctx context.Context, address string) (BalanceOutput, error) {
	addr, ok := model.NormalizeAddress(address)
	if !ok {
		return BalanceOutput{}, newError(ErrValidation, "invalid address")
	}

	var bal int64
	err := u.tx.ReadOnly(ctx, func(r repo.TxRepos) error {
		v, err := r.Tokens().BalanceOf(ctx, addr)
		if err != nil {
			return dbError()
		}
		bal = v
		return nil
	})
	if err != nil {
		return BalanceOutput{}, err
	}
	return BalanceOutput{Address: addr, Balance: bal, BalanceDisplay: money.FormatAmount(bal)}, nil
}

func (u *TokenUsecase) Allowance(ctx context.Context, owner string, spender string) (AllowanceOutput, error) {
	o, ok := model.NormalizeAddress(owner)
	if !ok {
		return AllowanceOutput{}, newError(ErrValidation, "invalid owner")
	}
	s, ok := model.NormalizeAddress(spender)
	if !ok {
		return AllowanceOutput{}, newError(ErrValidation, "invalid spender")
	}

	var amount int64
	err := u.tx.ReadOnly(ctx, func(r repo.TxRepos) error {
		v, err := r.Tokens().Allowance(ctx, o, s)
		if err != nil {
			return dbError()
		}
		amount = v
		return nil
	})
	if err != nil {
		return AllowanceOutput{}, err
	}
	return AllowanceOutput{Owner: o, Spender: s, Amount: amount, AmountDisplay: money.FormatAmount(amount)}, nil
}

// 許可額を上書きする（0で取り消し）
func (u *TokenUsecase) Approve(ctx context.Context, caller Caller, spender string, amount int64) (AllowanceOutput, error) {
	owner, err := callerAddress(caller)
	if err != nil {
		return AllowanceOutput{}, err
	}
	s, ok := model.NormalizeAddress(spender)
	if !ok {
		return AllowanceOutput{}, newError(ErrValidation, "invalid spender")
	}
	if amount < 0 {
		return AllowanceOutput{}, newError(ErrValidation, "amount must be >= 0")
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Tokens().Approve(ctx, owner, s, amount); err != nil {
			return dbError()
		}
		return nil
	})
	if err != nil {
		return AllowanceOutput{}, err
	}

	u.log.Info("token approved", zap.String("owner", owner), zap.String("spender", s), zap.String("amount", money.FormatAmount(amount)))
	return AllowanceOutput{Owner: owner, Spender: s, Amount: amount, AmountDisplay: money.FormatAmount(amount)}, nil
}

func (u *TokenUsecase) Transfer(ctx context.Context, caller Caller, to string, amount int64) (BalanceOutput, error) {
	from, err := callerAddress(caller)
	if err != nil {
		return BalanceOutput{}, err
	}
	dest, ok := model.NormalizeAddress(to)
	if !ok {
		return BalanceOutput{}, newError(ErrValidation, "invalid recipient")
	}
	if amount <= 0 {
		return BalanceOutput{}, newError(ErrValidation, "amount must be > 0")
	}

	var bal int64
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Tokens().Transfer(ctx, from, dest, amount); err != nil {
			return transferError(err)
		}
		v, err := r.Tokens().BalanceOf(ctx, from)
		if err != nil {
			return dbError()
		}
		bal = v
		return nil
	})
	if err != nil {
		return BalanceOutput{}, err
	}

	u.log.Info("token transferred", zap.String("from", from), zap.String("to", dest), zap.String("amount", money.FormatAmount(amount)))
	return BalanceOutput{Address: from, Balance: bal, BalanceDisplay: money.FormatAmount(bal)}, nil
}

// テストネット用の発行。オーナーだけ、設定で有効なときだけ。
func (u *TokenUsecase) Mint(ctx context.Context, caller Caller, to string, amount int64) (BalanceOutput, error) {
	if err := u.access.RequireOwner(caller); err != nil {
		return BalanceOutput{}, err
	}
	if !u.faucetEnabled {
		return BalanceOutput{}, newError(ErrPermissionDenied, "token faucet is disabled")
	}
	dest, ok := model.NormalizeAddress(to)
	if !ok {
		return BalanceOutput{}, newError(ErrValidation, "invalid recipient")
	}
	if amount <= 0 {
		return BalanceOutput{}, newError(ErrValidation, "amount must be > 0")
	}
	actor, _ := callerAddress(caller)

	var bal int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Tokens().BalanceOf(ctx, dest)
		if err != nil {
			return dbError()
		}
		if err := r.Tokens().Mint(ctx, dest, amount); err != nil {
			return dbError()
		}
		bal = before + amount

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorAddress: actor,
			Action:       model.AuditActionMintToken,
			ResourceType: model.AuditResourceToken,
			ResourceID:   0,
			BeforeJSON:   toJSON(map[string]interface{}{"address": dest, "balance": before}),
			AfterJSON:    toJSON(map[string]interface{}{"address": dest, "balance": bal}),
			CreatedAt:    time.Now(),
		}); err != nil {
			return dbError()
		}
		return nil
	})
	if err != nil {
		return BalanceOutput{}, err
	}

	u.log.Info("token minted", zap.String("to", dest), zap.String("amount", money.FormatAmount(amount)))
	return BalanceOutput{Address: dest, Balance: bal, BalanceDisplay: money.FormatAmount(bal)}, nil
}
