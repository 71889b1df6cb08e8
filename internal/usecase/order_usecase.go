package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brameldering/bram-pos/internal/domain/model"
	"github.com/brameldering/bram-pos/internal/pricing"
	repo "github.com/brameldering/bram-pos/internal/repository"

	"github.com/shopspring/decimal"
)

// 注文シーケンスのカウンタ名
const orderSequenceName = "orders"

type OrderUsecase struct {
	tx    repo.TransactionManager
	rules pricing.Rules
}

func NewOrderUsecase(tx repo.TransactionManager, rules pricing.Rules) *OrderUsecase {
	return &OrderUsecase{tx: tx, rules: rules}
}

type ShippingAddressInput struct {
	Address    string
	City       string
	PostalCode string
	Country    string
}

type CreateOrderInput struct {
	ShippingAddress ShippingAddressInput
	PaymentMethod   string
}

// 決済プロバイダからの確認ペイロード
type PaymentConfirmationInput struct {
	TransactionID string
	Status        string
	UpdateTime    string
	EmailAddress  string
}

type OrderItemOutput struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

type ShippingAddressOutput struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type PaymentResultOutput struct {
	TransactionID string `json:"id"`
	Status        string `json:"status"`
	UpdateTime    string `json:"update_time"`
	EmailAddress  string `json:"email_address"`
}

type OrderOutput struct {
	ID              int64                 `json:"id"`
	SequenceID      string                `json:"sequence_id"`
	UserID          int64                 `json:"user_id"`
	ShippingAddress ShippingAddressOutput `json:"shipping_address"`
	PaymentMethod   string                `json:"payment_method"`
	ItemsPrice      decimal.Decimal       `json:"items_price"`
	ShippingPrice   decimal.Decimal       `json:"shipping_price"`
	TaxPrice        decimal.Decimal       `json:"tax_price"`
	TotalPrice      decimal.Decimal       `json:"total_price"`
	IsPaid          bool                  `json:"is_paid"`
	PaidAt          *time.Time            `json:"paid_at,omitempty"`
	IsDelivered     bool                  `json:"is_delivered"`
	DeliveredAt     *time.Time            `json:"delivered_at,omitempty"`
	PaymentResult   *PaymentResultOutput  `json:"payment_result,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	Items           []OrderItemOutput     `json:"items"`
}

// 注文詳細は所有者の名前とメールも返す
type OrderDetailOutput struct {
	OrderOutput
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// CreateOrderはACTIVEカートの中身から注文を確定する。
// 在庫減算・価格計算・連番払い出し・明細作成・カートクリアまで1トランザクション。
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, UnauthorizedError("unauthorized")
	}
	if strings.TrimSpace(in.ShippingAddress.Address) == "" ||
		strings.TrimSpace(in.ShippingAddress.City) == "" ||
		strings.TrimSpace(in.ShippingAddress.PostalCode) == "" ||
		strings.TrimSpace(in.ShippingAddress.Country) == "" {
		return OrderOutput{}, ValidationError("shipping address incomplete")
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return OrderOutput{}, ValidationError("payment method required")
	}

	var out OrderOutput

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//ACTIVEカート取得
		cart, err := r.Carts().FindActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return ValidationError("cart empty")
		}
		if err != nil {
			return InternalError("db error")
		}

		//カート明細取得
		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return InternalError("db error")
		}
		if len(cartItems) == 0 {
			return ValidationError("cart empty")
		}

		//在庫を確定時に再チェックして減らす
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		lineItems := make([]pricing.LineItem, 0, len(cartItems))

		for _, ci := range cartItems {
			//商品取得
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return ValidationError("invalid product")
			}
			if err != nil {
				return InternalError("db error")
			}
			if !p.IsActive {
				return ValidationError("invalid product")
			}

			//在庫減算（足りないなら false）
			ok, err := r.Products().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return InternalError("db error")
			}
			if !ok {
				return ValidationError("out of stock")
			}

			//スナップショット
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           ci.ProductID,
				ProductNameSnapshot: p.Name,
				ImageURLSnapshot:    p.ImageURL,
				UnitPriceSnapshot:   ci.UnitPriceSnapshot,
				Quantity:            ci.Quantity,
				CreatedAt:           time.Now(),
			})

			lineItems = append(lineItems, pricing.LineItem{
				UnitPrice: ci.UnitPriceSnapshot,
				Quantity:  ci.Quantity,
			})
		}

		//価格内訳
		bd, err := pricing.Calculate(lineItems, u.rules)
		if err != nil {
			return ValidationError(err.Error())
		}

		//表示用の連番ID
		seq, err := r.Sequences().Next(ctx, orderSequenceName)
		if err != nil {
			return InternalError("db error")
		}

		// 注文作成
		now := time.Now()
		order := model.Order{
			SequenceID: fmt.Sprintf("ORD-%08d", seq),
			UserID:     userID,
			ShippingAddress: model.ShippingAddress{
				Address:    strings.TrimSpace(in.ShippingAddress.Address),
				City:       strings.TrimSpace(in.ShippingAddress.City),
				PostalCode: strings.TrimSpace(in.ShippingAddress.PostalCode),
				Country:    strings.TrimSpace(in.ShippingAddress.Country),
			},
			PaymentMethod: strings.TrimSpace(in.PaymentMethod),
			ItemsPrice:    bd.ItemsPrice,
			ShippingPrice: bd.ShippingPrice,
			TaxPrice:      bd.TaxPrice,
			TotalPrice:    bd.TotalPrice,
			IsPaid:        false,
			IsDelivered:   false,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return InternalError("db error")
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return InternalError("db error")
		}

		//カートをCHECKED_OUTにして、明細をクリア（再注文防止）
		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
			return InternalError("db error")
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return InternalError("db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// ConfirmPaymentは決済プロバイダの確認結果を記録して支払い済みにする。
// 同じトランザクションIDの再送はno-op成功、別IDなら409。
func (u *OrderUsecase) ConfirmPayment(ctx context.Context, userID int64, orderID int64, in PaymentConfirmationInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, UnauthorizedError("unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, ValidationError("invalid id")
	}
	txnID := strings.TrimSpace(in.TransactionID)
	if txnID == "" {
		return OrderOutput{}, ValidationError("transaction id required")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NotFoundError("not found")
		}
		if err != nil {
			return InternalError("db error")
		}

		//所有チェック
		if o.UserID != userID {
			return ForbiddenError("forbidden")
		}

		if o.IsPaid {
			//同じIDの再送はno-op（プロバイダはリトライしてくる）
			if o.PaymentResult.TransactionID == txnID {
				items, err := r.OrderItems().ListByOrderID(ctx, orderID)
				if err != nil {
					return InternalError("db error")
				}
				out = toOrderOutput(o, items)
				return nil
			}
			//別IDは二重払い
			return ConflictError("order already paid with different transaction")
		}

		result := model.PaymentResult{
			TransactionID: txnID,
			Status:        strings.TrimSpace(in.Status),
			UpdateTime:    strings.TrimSpace(in.UpdateTime),
			EmailAddress:  strings.TrimSpace(in.EmailAddress),
		}

		ok, err := r.Orders().MarkPaidIfUnpaid(ctx, orderID, result, time.Now())
		if err != nil {
			return InternalError("db error")
		}
		if !ok {
			//同時の確認に負けた。読み直して同じIDならno-op
			o2, err := r.Orders().FindByID(ctx, orderID)
			if err != nil {
				return InternalError("db error")
			}
			if !o2.IsPaid || o2.PaymentResult.TransactionID != txnID {
				return ConflictError("order already paid with different transaction")
			}
			o = o2
		} else {
			o, err = r.Orders().FindByID(ctx, orderID)
			if err != nil {
				return InternalError("db error")
			}
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return InternalError("db error")
		}
		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, UnauthorizedError("unauthorized")
	}

	//ページングでまずは固定で取る
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
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

// GetOrderDetailは所有者か管理者だけ。所有者の名前・メールも引いて返す。
func (u *OrderUsecase) GetOrderDetail(ctx context.Context, userID int64, isAdmin bool, orderID int64) (OrderDetailOutput, error) {
	if userID <= 0 {
		return OrderDetailOutput{}, UnauthorizedError("unauthorized")
	}
	if orderID <= 0 {
		return OrderDetailOutput{}, ValidationError("invalid id")
	}

	var out OrderDetailOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NotFoundError("not found")
		}
		if err != nil {
			return InternalError("db error")
		}

		//所有者でも管理者でもないなら403
		if o.UserID != userID && !isAdmin {
			return ForbiddenError("forbidden")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return InternalError("db error")
		}

		owner, err := r.Users().FindByID(ctx, o.UserID)
		if err != nil {
			return InternalError("db error")
		}
		if owner == nil {
			return NotFoundError("order user not found")
		}

		out = OrderDetailOutput{
			OrderOutput: toOrderOutput(o, items),
			UserName:    owner.Name,
			UserEmail:   owner.Email,
		}
		return nil
	})

	if err != nil {
		return OrderDetailOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			ImageURL:  it.ImageURLSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	out := OrderOutput{
		ID:         o.ID,
		SequenceID: o.SequenceID,
		UserID:     o.UserID,
		ShippingAddress: ShippingAddressOutput{
			Address:    o.ShippingAddress.Address,
			City:       o.ShippingAddress.City,
			PostalCode: o.ShippingAddress.PostalCode,
			Country:    o.ShippingAddress.Country,
		},
		PaymentMethod: o.PaymentMethod,
		ItemsPrice:    o.ItemsPrice,
		ShippingPrice: o.ShippingPrice,
		TaxPrice:      o.TaxPrice,
		TotalPrice:    o.TotalPrice,
		IsPaid:        o.IsPaid,
		PaidAt:        o.PaidAt,
		IsDelivered:   o.IsDelivered,
		DeliveredAt:   o.DeliveredAt,
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}

	//支払い済みになるまでpayment_resultは出さない
	if o.IsPaid {
		out.PaymentResult = &PaymentResultOutput{
			TransactionID: o.PaymentResult.TransactionID,
			Status:        o.PaymentResult.Status,
			UpdateTime:    o.PaymentResult.UpdateTime,
			EmailAddress:  o.PaymentResult.EmailAddress,
		}
	}

	return out
}
