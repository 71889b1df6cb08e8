package repository

import (
	"context"
	"time"

	"github.com/brameldering/bram-pos/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string // paid / unpaid / delivered / undelivered
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	// 未払いのときだけ支払い済みにする（条件付きUPDATE、戻り値は更新できたか）
	MarkPaidIfUnpaid(ctx context.Context, orderID int64, result model.PaymentResult, paidAt time.Time) (bool, error)

	// 支払い済みかつ未配達のときだけ配達済みにする
	MarkDeliveredIfPaid(ctx context.Context, orderID int64, deliveredAt time.Time) (bool, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
