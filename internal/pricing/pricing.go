package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// 明細が空
	ErrNoItems = errors.New("no line items")
	// 数量が0以下
	ErrInvalidQuantity = errors.New("quantity must be >= 1")
	// 単価がマイナス
	ErrNegativePrice = errors.New("unit price must be >= 0")
)

// 注文明細1行ぶんの価格計算入力。
type LineItem struct {
	UnitPrice decimal.Decimal
	Quantity  int64
}

// 送料と税のルール。configから渡す。
type Rules struct {
	FlatShippingFee       decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	TaxRate               decimal.Decimal
}

// 計算結果。total = items + shipping + tax を常に満たす。
type Breakdown struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// Calculateは注文確定時の価格内訳を出す。
// 同じ入力なら必ず同じ結果。小数は2桁で四捨五入。
func Calculate(items []LineItem, rules Rules) (Breakdown, error) {
	if len(items) == 0 {
		return Breakdown{}, ErrNoItems
	}

	itemsPrice := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			return Breakdown{}, ErrInvalidQuantity
		}
		if it.UnitPrice.IsNegative() {
			return Breakdown{}, ErrNegativePrice
		}
		itemsPrice = itemsPrice.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}
	itemsPrice = itemsPrice.Round(2)

	//しきい値以上なら送料無料
	shippingPrice := rules.FlatShippingFee.Round(2)
	if rules.FreeShippingThreshold.IsPositive() && itemsPrice.GreaterThanOrEqual(rules.FreeShippingThreshold) {
		shippingPrice = decimal.Zero.Round(2)
	}

	taxPrice := itemsPrice.Mul(rules.TaxRate).Round(2)

	totalPrice := itemsPrice.Add(shippingPrice).Add(taxPrice)

	return Breakdown{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TaxPrice:      taxPrice,
		TotalPrice:    totalPrice,
	}, nil
}
