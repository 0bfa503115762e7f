package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/model"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

type CreateCategory struct {
	Category *model.Category

	Created *model.Category
}

func (c *CreateCategory) Perform(ctx context.Context, writer storage.Writer) error {
	category := c.Category.Clone()
	if category.ID == uuid.Nil {
		category.ID = uuid.Must(uuid.NewV4())
	}
	if err := model.ValidateCategory(category); err != nil {
		return err
	}
	if err := writer.InsertCategory(ctx, category); err != nil {
		return err
	}
	c.Created = category
	return nil
}

// UpdateCategory changes display fields only; the name is a stable key.
type UpdateCategory struct {
	Category *model.Category

	Updated *model.Category
}

func (u *UpdateCategory) Perform(ctx context.Context, writer storage.Writer) error {
	stored, err := writer.GetCategory(ctx, u.Category.ID)
	if err != nil {
		return err
	}
	category := stored.Clone()
	category.Icon = u.Category.Icon
	category.ColorHex = u.Category.ColorHex
	if err := model.ValidateCategory(category); err != nil {
		return err
	}
	if err := writer.UpdateCategory(ctx, category); err != nil {
		return err
	}
	u.Updated = category
	return nil
}

type DeleteCategory struct {
	ID uuid.UUID
}

func (d *DeleteCategory) Perform(ctx context.Context, writer storage.Writer) error {
	if _, err := writer.GetCategory(ctx, d.ID); err != nil {
		return err
	}
	inUse, err := writer.CategoryInUse(ctx, d.ID)
	if err != nil {
		return err
	}
	if inUse {
		return model.NewConflictError("category", "category is referenced by transactions")
	}
	return writer.DeleteCategory(ctx, d.ID)
}
