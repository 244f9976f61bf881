package domain

import "context"

// Category classifies events.
// swagger:model Category
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryRepository defines storage operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, cat *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context, from, size int) ([]*Category, error)
	Update(ctx context.Context, cat *Category) error
	Delete(ctx context.Context, id string) error
}

// CategoryService defines category management. Create, Update, and Delete are
// admin operations; List and Get are public.
type CategoryService interface {
	Create(ctx context.Context, name string) (*Category, error)
	Update(ctx context.Context, id, name string) (*Category, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, from, size int) ([]*Category, error)
	Get(ctx context.Context, id string) (*Category, error)
}
