package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brameldering/bram-pos/internal/domain/model"
	repo "github.com/brameldering/bram-pos/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	auditRepo   repo.AuditLogRepository
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	auditRepo repo.AuditLogRepository,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		auditRepo:   auditRepo,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, ValidationError("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, ValidationError("invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, ValidationError("q too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return ProductListOutput{}, ValidationError("min_price must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return ProductListOutput{}, ValidationError("max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return ProductListOutput{}, ValidationError("min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, ValidationError("invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, InternalError("db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, ValidationError("invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NotFoundError("not found")
	}
	if err != nil {
		return model.Product{}, InternalError("db error")
	}

	if !p.IsActive {
		return model.Product{}, NotFoundError("not found")
	}
	return p, nil
}

type AdminCreateProductInput struct {
	Name         string
	ImageURL     string
	Description  string
	Price        decimal.Decimal
	CountInStock int64
	IsActive     bool
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in AdminCreateProductInput) (int64, error) {
	if adminUserID <= 0 {
		return 0, UnauthorizedError("unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return 0, ValidationError("name required")
	}
	if in.Price.IsNegative() {
		return 0, ValidationError("price must be >= 0")
	}
	if in.CountInStock < 0 {
		return 0, ValidationError("stock must be >= 0")
	}

	now := time.Now()
	p, err := u.productRepo.Create(ctx, model.Product{
		Name:         strings.TrimSpace(in.Name),
		ImageURL:     strings.TrimSpace(in.ImageURL),
		Description:  in.Description,
		Price:        in.Price.Round(2),
		CountInStock: in.CountInStock,
		IsActive:     in.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return 0, InternalError("db error")
	}

	//監査ログを作成（商品作成）
	afterJSON := fmt.Sprintf(`{"name":%q,"price":%q}`, p.Name, p.Price.StringFixed(2))
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionCreateProduct,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   p.ID,
		BeforeJSON:   "{}",
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return 0, InternalError("db error")
	}

	return p.ID, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in AdminCreateProductInput) error {
	if adminUserID <= 0 {
		return UnauthorizedError("unauthorized")
	}
	if productID <= 0 {
		return ValidationError("invalid product id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return ValidationError("name required")
	}
	if in.Price.IsNegative() {
		return ValidationError("price must be >= 0")
	}
	if in.CountInStock < 0 {
		return ValidationError("stock must be >= 0")
	}

	//変更前（before）
	before, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NotFoundError("not found")
	}
	if err != nil {
		return InternalError("db error")
	}

	err = u.productRepo.Update(ctx, model.Product{
		ID:           productID,
		Name:         strings.TrimSpace(in.Name),
		ImageURL:     strings.TrimSpace(in.ImageURL),
		Description:  in.Description,
		Price:        in.Price.Round(2),
		CountInStock: in.CountInStock,
		IsActive:     in.IsActive,
		UpdatedAt:    time.Now(),
	})
	if err == repo.ErrNotFound {
		return NotFoundError("not found")
	}
	if err != nil {
		return InternalError("db error")
	}

	beforeJSON := fmt.Sprintf(`{"name":%q,"price":%q}`, before.Name, before.Price.StringFixed(2))
	afterJSON := fmt.Sprintf(`{"name":%q,"price":%q}`, strings.TrimSpace(in.Name), in.Price.Round(2).StringFixed(2))
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateProduct,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return InternalError("db error")
	}

	return nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return UnauthorizedError("unauthorized")
	}
	if productID <= 0 {
		return ValidationError("invalid product id")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if err == repo.ErrNotFound {
		return NotFoundError("not found")
	}
	if err != nil {
		return InternalError("db error")
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionDeleteProduct,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   "{}",
		AfterJSON:    "{}",
		CreatedAt:    time.Now(),
	}); err != nil {
		return InternalError("db error")
	}

	return nil
}

func (u *ProductUsecase) AdminUpdateStock(ctx context.Context, adminUserID int64, productID int64, newStock int64) error {
	if adminUserID <= 0 {
		return UnauthorizedError("unauthorized")
	}
	if productID <= 0 {
		return ValidationError("invalid product id")
	}
	if newStock < 0 {
		return ValidationError("stock must be >= 0")
	}

	//変更前の在庫（before）
	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NotFoundError("not found")
	}
	if err != nil {
		return InternalError("db error")
	}

	beforeJSON := fmt.Sprintf(`{"count_in_stock":%d}`, p.CountInStock)
	afterJSON := fmt.Sprintf(`{"count_in_stock":%d}`, newStock)

	//在庫の現在値を更新
	if err := u.productRepo.SetStock(ctx, productID, newStock); err != nil {
		if err == repo.ErrNotFound {
			return NotFoundError("not found")
		}
		return InternalError("db error")
	}

	//監査ログを作成（在庫更新）
	//「誰が」「何を」「どの対象に」「どう変えたか」を残す
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return InternalError("db error")
	}

	return nil
}
