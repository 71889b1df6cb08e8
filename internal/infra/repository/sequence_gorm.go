package repository

import (
	"context"
	"errors"

	"github.com/brameldering/bram-pos/internal/domain/model"

	"gorm.io/gorm"
)

type SequenceGormRepository struct {
	db *gorm.DB
}

func NewSequenceGormRepository(db *gorm.DB) *SequenceGormRepository {
	return &SequenceGormRepository{db: db}
}

// カウンタを+1して新しい値を返す。
// UPDATE ... RETURNINGなので同時に呼ばれても同じ値は出ない。
func (r *SequenceGormRepository) Next(ctx context.Context, name string) (int64, error) {
	var next int64

	err := r.db.WithContext(ctx).
		Raw("UPDATE sequence_counters SET value = value + 1 WHERE name = ? RETURNING value", name).
		Scan(&next).Error
	if err != nil {
		return 0, err
	}
	if next > 0 {
		return next, nil
	}

	// 行が無ければ作る（同時作成は片方が負けるのでリトライ）
	err = r.db.WithContext(ctx).Create(&model.SequenceCounter{Name: name, Value: 1}).Error
	if err == nil {
		return 1, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		// ドライバによっては重複キーが素のエラーで返るので、もう一度UPDATEを試す
		retryErr := r.db.WithContext(ctx).
			Raw("UPDATE sequence_counters SET value = value + 1 WHERE name = ? RETURNING value", name).
			Scan(&next).Error
		if retryErr == nil && next > 0 {
			return next, nil
		}
		return 0, err
	}

	err = r.db.WithContext(ctx).
		Raw("UPDATE sequence_counters SET value = value + 1 WHERE name = ? RETURNING value", name).
		Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}
