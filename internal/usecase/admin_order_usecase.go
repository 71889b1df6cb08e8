package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/brameldering/bram-pos/internal/domain/model"
	repo "github.com/brameldering/bram-pos/internal/repository"
)

type AdminOrderUsecase struct {
	tx repo.TransactionManager
}

func NewAdminOrderUsecase(tx repo.TransactionManager) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx}
}

// 注文一覧（管理者）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return []OrderOutput{}, ValidationError("invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return []OrderOutput{}, ValidationError("invalid limit")
	}
	switch f.Status {
	case "", "paid", "unpaid", "delivered", "undelivered":
		// OK
	default:
		return []OrderOutput{}, ValidationError("invalid status")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return InternalError("db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return InternalError("db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// MarkDeliveredは支払い済みの注文を配達済みにする。
// すでに配達済みならno-op成功（管理ツールのリトライを許す）。未払いは422。
func (u *AdminOrderUsecase) MarkDelivered(ctx context.Context, actorAdminUserID int64, orderID int64) error {
	if actorAdminUserID <= 0 {
		return UnauthorizedError("unauthorized")
	}
	if orderID <= 0 {
		return ValidationError("invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文取得
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NotFoundError("not found")
		}
		if err != nil {
			return InternalError("db error")
		}

		// 未払いは配達にできない
		if !o.IsPaid {
			return PreconditionError("order not paid")
		}

		// すでに配達済みなら何もしない（200）
		if o.IsDelivered {
			return nil
		}

		deliveredAt := time.Now()
		ok, err := r.Orders().MarkDeliveredIfPaid(ctx, orderID, deliveredAt)
		if err != nil {
			return InternalError("db error")
		}
		if !ok {
			//同時の更新に負けた。読み直して配達済みならno-op
			o2, err := r.Orders().FindByID(ctx, orderID)
			if err != nil {
				return InternalError("db error")
			}
			if o2.IsDelivered {
				return nil
			}
			return PreconditionError("order not paid")
		}

		// ★監査ログ（DELIVER_ORDER）
		beforeJSON := `{"is_delivered":false}`
		afterJSON := fmt.Sprintf(`{"is_delivered":true,"delivered_at":%q}`, deliveredAt.Format(time.RFC3339))
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionDeliverOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		}); err != nil {
			return InternalError("db error")
		}

		return nil
	})
}
