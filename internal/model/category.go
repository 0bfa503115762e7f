package model

import (
	"strings"

	"github.com/gofrs/uuid/v5"
)

// Category groups transactions. Name is a stable machine key; the display
// form is a presentation concern.
type Category struct {
	ID       uuid.UUID
	Name     string
	Icon     string
	ColorHex string
}

// Clone returns a copy of the category.
func (c *Category) Clone() *Category {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}

func ValidateCategory(c *Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("name", "category name is required")
	}
	if c.ColorHex != "" && !strings.HasPrefix(c.ColorHex, "#") {
		return NewValidationError("colorHex", "color must be a hex value starting with '#'")
	}
	return nil
}
