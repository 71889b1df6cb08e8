package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 配送先。注文作成時のスナップショットで、作成後は変更しない。
type ShippingAddress struct {
	Address    string `gorm:"type:varchar(255);not null" json:"address"`
	City       string `gorm:"type:varchar(255);not null" json:"city"`
	PostalCode string `gorm:"type:varchar(20);not null" json:"postal_code"`
	Country    string `gorm:"type:varchar(100);not null" json:"country"`
}

// 決済プロバイダからの確認結果。支払い完了まで空、完了後は変更しない。
type PaymentResult struct {
	TransactionID string `gorm:"type:varchar(255)" json:"id"`
	Status        string `gorm:"type:varchar(50)" json:"status"`
	UpdateTime    string `gorm:"type:varchar(50)" json:"update_time"`
	EmailAddress  string `gorm:"type:varchar(255)" json:"email_address"`
}

// 注文。明細・住所・支払い方法は作成後に変更しない（会計記録）。
// is_delivered は is_paid=true を通らないと立たない。
type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	// 内部IDとは別の、連番から作る表示用ID（ORD-00000001）
	SequenceID string `gorm:"type:varchar(20);not null;uniqueIndex" json:"sequence_id"`

	UserID int64 `gorm:"not null;index" json:"user_id"`

	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	PaymentMethod string `gorm:"type:varchar(50);not null" json:"payment_method"`

	PaymentResult PaymentResult `gorm:"embedded;embeddedPrefix:payment_result_" json:"-"`

	ItemsPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"items_price"`
	ShippingPrice decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"shipping_price"`
	TaxPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"tax_price"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_price"`

	IsPaid bool       `gorm:"not null;default:false;index" json:"is_paid"`
	PaidAt *time.Time `json:"paid_at,omitempty"`

	IsDelivered bool       `gorm:"not null;default:false;index" json:"is_delivered"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
