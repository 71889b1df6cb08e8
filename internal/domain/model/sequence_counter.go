package model

// 表示用注文IDの連番カウンタ。
// 行をUPDATE ... RETURNINGで読み書きするので値の取りこぼしは起きない。
type SequenceCounter struct {
	Name  string `gorm:"primaryKey;type:varchar(50)"`
	Value int64  `gorm:"not null;default:0"`
}
