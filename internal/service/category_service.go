package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/ledger"
	"github.com/carson-networks/budget-ledger/internal/model"
)

// CategoryService handles category business logic.
type CategoryService struct {
	engine *ledger.Engine
}

func NewCategoryService(engine *ledger.Engine) *CategoryService {
	return &CategoryService{engine: engine}
}

func (s *CategoryService) CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	return s.engine.CreateCategory(ctx, category)
}

func (s *CategoryService) UpdateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	return s.engine.UpdateCategory(ctx, category)
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.engine.DeleteCategory(ctx, id)
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return s.engine.ListCategories(ctx)
}
