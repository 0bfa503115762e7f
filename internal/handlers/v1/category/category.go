package category

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/v1/apierr"
	"github.com/carson-networks/budget-ledger/internal/model"
)

// Category is the API model for a category.
type Category struct {
	ID       string `json:"id" doc:"Category UUID"`
	Name     string `json:"name" doc:"Stable machine name"`
	Icon     string `json:"icon" doc:"Icon name"`
	ColorHex string `json:"colorHex" doc:"Display color, e.g. '#34C759'"`
}

func toCategory(c *model.Category) Category {
	return Category{
		ID:       c.ID.String(),
		Name:     c.Name,
		Icon:     c.Icon,
		ColorHex: c.ColorHex,
	}
}

type categoryService interface {
	CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]*model.Category, error)
}

type CreateCategoryInput struct {
	Body CreateCategoryBody
}

type CreateCategoryBody struct {
	Name     string `json:"name" minLength:"1" doc:"Unique machine name"`
	Icon     string `json:"icon,omitempty" doc:"Icon name"`
	ColorHex string `json:"colorHex,omitempty" doc:"Display color"`
}

type CreateCategoryOutput struct {
	Status int
	Body   Category
}

type UpdateCategoryInput struct {
	ID   string `path:"id" format:"uuid" doc:"Category UUID"`
	Body UpdateCategoryBody
}

// UpdateCategoryBody carries the display fields. The name is fixed once created.
type UpdateCategoryBody struct {
	Icon     string `json:"icon,omitempty" doc:"Icon name"`
	ColorHex string `json:"colorHex,omitempty" doc:"Display color"`
}

type UpdateCategoryOutput struct {
	Body Category
}

type DeleteCategoryInput struct {
	ID string `path:"id" format:"uuid" doc:"Category UUID"`
}

type DeleteCategoryOutput struct {
	Status int
}

type ListCategoriesOutput struct {
	Body struct {
		Categories []Category `json:"categories" doc:"All categories ordered by name"`
	}
}

// Handler serves the category endpoints.
type Handler struct {
	CategoryService categoryService
}

func NewHandler(svc categoryService) *Handler {
	return &Handler{CategoryService: svc}
}

func (h *Handler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-category",
		Method:      http.MethodPost,
		Path:        "/v1/category",
		Summary:     "Create a category",
		Tags:        []string{"Categories"},
	}, h.create)
	huma.Register(api, huma.Operation{
		OperationID: "update-category",
		Method:      http.MethodPut,
		Path:        "/v1/category/{id}",
		Summary:     "Update a category's icon and color",
		Tags:        []string{"Categories"},
	}, h.update)
	huma.Register(api, huma.Operation{
		OperationID: "delete-category",
		Method:      http.MethodDelete,
		Path:        "/v1/category/{id}",
		Summary:     "Delete an unused category",
		Tags:        []string{"Categories"},
	}, h.delete)
	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/v1/categories",
		Summary:     "List categories",
		Tags:        []string{"Categories"},
	}, h.list)
}

func (h *Handler) create(ctx context.Context, input *CreateCategoryInput) (*CreateCategoryOutput, error) {
	created, err := h.CategoryService.CreateCategory(ctx, &model.Category{
		Name:     input.Body.Name,
		Icon:     input.Body.Icon,
		ColorHex: input.Body.ColorHex,
	})
	if err != nil {
		return nil, apierr.FromError("failed to create category", err)
	}
	return &CreateCategoryOutput{Status: http.StatusCreated, Body: toCategory(created)}, nil
}

func (h *Handler) update(ctx context.Context, input *UpdateCategoryInput) (*UpdateCategoryOutput, error) {
	id, err := uuid.FromString(input.ID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid id", err)
	}
	updated, err := h.CategoryService.UpdateCategory(ctx, &model.Category{
		ID:       id,
		Icon:     input.Body.Icon,
		ColorHex: input.Body.ColorHex,
	})
	if err != nil {
		return nil, apierr.FromError("failed to update category", err)
	}
	return &UpdateCategoryOutput{Body: toCategory(updated)}, nil
}

func (h *Handler) delete(ctx context.Context, input *DeleteCategoryInput) (*DeleteCategoryOutput, error) {
	id, err := uuid.FromString(input.ID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid id", err)
	}
	if err := h.CategoryService.DeleteCategory(ctx, id); err != nil {
		return nil, apierr.FromError("failed to delete category", err)
	}
	return &DeleteCategoryOutput{Status: http.StatusNoContent}, nil
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	categories, err := h.CategoryService.ListCategories(ctx)
	if err != nil {
		return nil, apierr.FromError("failed to list categories", err)
	}
	out := &ListCategoriesOutput{}
	out.Body.Categories = make([]Category, len(categories))
	for i, c := range categories {
		out.Body.Categories[i] = toCategory(c)
	}
	return out, nil
}
