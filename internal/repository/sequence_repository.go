package repository

import "context"

// 表示用IDの連番を払い出す約束。
type SequenceRepository interface {
	// nameのカウンタを+1して新しい値を返す（行が無ければ作る）
	Next(ctx context.Context, name string) (int64, error)
}
