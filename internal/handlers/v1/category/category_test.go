package category

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/budget-ledger/internal/model"
)

type mockCategoryService struct {
	mock.Mock
}

func (m *mockCategoryService) CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	args := m.Called(ctx, category)
	c, _ := args.Get(0).(*model.Category)
	return c, args.Error(1)
}

func (m *mockCategoryService) UpdateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	args := m.Called(ctx, category)
	c, _ := args.Get(0).(*model.Category)
	return c, args.Error(1)
}

func (m *mockCategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCategoryService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).([]*model.Category)
	return c, args.Error(1)
}

func newTestAPI(t *testing.T, svc *mockCategoryService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewHandler(svc).Register(api)
	return api
}

func TestHTTP_CreateCategory_Success(t *testing.T) {
	svc := new(mockCategoryService)
	id := uuid.Must(uuid.NewV4())
	svc.On("CreateCategory", mock.Anything, mock.MatchedBy(func(c *model.Category) bool {
		return c.Name == "groceries"
	})).Return(&model.Category{ID: id, Name: "groceries", Icon: "cart"}, nil)

	resp := newTestAPI(t, svc).Post("/v1/category", CreateCategoryBody{Name: "groceries", Icon: "cart"})

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body Category
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, id.String(), body.ID)
}

func TestHTTP_CreateCategory_DuplicateName(t *testing.T) {
	svc := new(mockCategoryService)
	svc.On("CreateCategory", mock.Anything, mock.Anything).
		Return(nil, model.NewConflictError("name", "category groceries already exists"))

	resp := newTestAPI(t, svc).Post("/v1/category", CreateCategoryBody{Name: "groceries"})

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestHTTP_DeleteCategory_InUse(t *testing.T) {
	svc := new(mockCategoryService)
	id := uuid.Must(uuid.NewV4())
	svc.On("DeleteCategory", mock.Anything, id).
		Return(model.NewConflictError("category", "category is referenced by transactions"))

	resp := newTestAPI(t, svc).Delete("/v1/category/" + id.String())

	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestHTTP_UpdateCategory_Success(t *testing.T) {
	svc := new(mockCategoryService)
	id := uuid.Must(uuid.NewV4())
	svc.On("UpdateCategory", mock.Anything, mock.MatchedBy(func(c *model.Category) bool {
		return c.ID == id && c.ColorHex == "#FF0000"
	})).Return(&model.Category{ID: id, Name: "fuel", ColorHex: "#FF0000"}, nil)

	resp := newTestAPI(t, svc).Put("/v1/category/"+id.String(), UpdateCategoryBody{ColorHex: "#FF0000"})

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestHTTP_ListCategories(t *testing.T) {
	svc := new(mockCategoryService)
	svc.On("ListCategories", mock.Anything).Return([]*model.Category{
		{ID: uuid.Must(uuid.NewV4()), Name: "fuel"},
		{ID: uuid.Must(uuid.NewV4()), Name: "groceries"},
	}, nil)

	resp := newTestAPI(t, svc).Get("/v1/categories")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Categories []Category `json:"categories"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Categories, 2)
}
