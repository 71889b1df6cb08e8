package usecase

import (
	"context"
	"net/http"
	"testing"

	"github.com/brameldering/bram-pos/internal/domain/model"
	repo "github.com/brameldering/bram-pos/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newProductUsecase() (*ProductUsecase, *ProductRepoMock, *AuditRepoMock) {
	products := &ProductRepoMock{}
	auditLogs := &AuditRepoMock{}
	return NewProductUsecase(products, auditLogs), products, auditLogs
}

func TestListPublicProducts_Validation(t *testing.T) {
	uc, _, _ := newProductUsecase()

	_, err := uc.ListPublicProducts(context.Background(), ListProductsInput{Page: 0, Limit: 20})
	assertHTTPStatus(t, err, http.StatusBadRequest, CodeValidation)

	_, err = uc.ListPublicProducts(context.Background(), ListProductsInput{Page: 1, Limit: 101})
	assertHTTPStatus(t, err, http.StatusBadRequest, CodeValidation)
}

func TestListPublicProducts_Success(t *testing.T) {
	uc, products, _ := newProductUsecase()

	products.On("ListPublic", mock.Anything, mock.MatchedBy(func(q repo.ProductListQuery) bool {
		return q.Page == 1 && q.Limit == 20 && q.Q == "mug"
	})).Return([]model.Product{{ID: 10, Name: "Mug"}}, int64(1), nil)

	out, err := uc.ListPublicProducts(context.Background(), ListProductsInput{Page: 1, Limit: 20, Q: "mug"})

	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(1), out.Total)
}

func TestGetProductDetail_InactiveLooksLikeNotFound(t *testing.T) {
	uc, products, _ := newProductUsecase()

	products.On("FindByID", mock.Anything, int64(10)).
		Return(model.Product{ID: 10, IsActive: false}, nil)

	_, err := uc.GetProductDetail(context.Background(), 10)

	assertHTTPStatus(t, err, http.StatusNotFound, CodeNotFound)
}

func TestAdminCreateProduct_WritesAuditLog(t *testing.T) {
	uc, products, auditLogs := newProductUsecase()

	products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Mug" && p.Price.Equal(d("10.00"))
	})).Return(model.Product{ID: 10, Name: "Mug", Price: d("10.00")}, nil)

	auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 1 &&
			l.Action == model.AuditActionCreateProduct &&
			l.ResourceType == model.AuditResourceProduct &&
			l.ResourceID == 10
	})).Return(nil)

	id, err := uc.AdminCreateProduct(context.Background(), 1, AdminCreateProductInput{
		Name:         "Mug",
		Price:        d("10.00"),
		CountInStock: 5,
		IsActive:     true,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(10), id)
	auditLogs.AssertExpectations(t)
}

func TestAdminCreateProduct_RejectsNegativePrice(t *testing.T) {
	uc, products, _ := newProductUsecase()

	_, err := uc.AdminCreateProduct(context.Background(), 1, AdminCreateProductInput{
		Name:  "Mug",
		Price: d("-1.00"),
	})

	assertHTTPStatus(t, err, http.StatusBadRequest, CodeValidation)
	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminUpdateStock_RecordsBeforeAndAfter(t *testing.T) {
	uc, products, auditLogs := newProductUsecase()

	products.On("FindByID", mock.Anything, int64(10)).
		Return(model.Product{ID: 10, CountInStock: 3, IsActive: true}, nil)
	products.On("SetStock", mock.Anything, int64(10), int64(8)).Return(nil)

	auditLogs.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateStock &&
			l.BeforeJSON == `{"count_in_stock":3}` &&
			l.AfterJSON == `{"count_in_stock":8}`
	})).Return(nil)

	err := uc.AdminUpdateStock(context.Background(), 1, 10, 8)

	assert.NoError(t, err)
	auditLogs.AssertExpectations(t)
}

func TestAdminDeleteProduct_NotFound(t *testing.T) {
	uc, products, auditLogs := newProductUsecase()

	products.On("SoftDelete", mock.Anything, int64(10)).Return(repo.ErrNotFound)

	err := uc.AdminDeleteProduct(context.Background(), 1, 10)

	assertHTTPStatus(t, err, http.StatusNotFound, CodeNotFound)
	auditLogs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
