package repository

import "context"

type SequenceRepository interface {
	// 次の値を払い出して進める（行ロック）
	Next(ctx context.Context, name string) (int64, error)
	// 次に払い出す値を見るだけ
	Peek(ctx context.Context, name string) (int64, error)
}
