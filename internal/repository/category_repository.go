package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"visa-advisory-portal/config"
	"visa-advisory-portal/internal/model"
)

const categoryColumns = `id, name, description, is_required, display_order, is_active, created_at`

type CategoryRepository struct {
	*config.Database
}

func NewCategoryRepository(database *config.Database) *CategoryRepository {
	return &CategoryRepository{database}
}

// ListActiveNames : the checklist order shown to customers
func (r *CategoryRepository) ListActiveNames(ctx context.Context, exec sqlx.ExtContext) ([]string, error) {
	query := `SELECT name FROM categories WHERE is_active ORDER BY display_order, name`

	names := []string{}
	if err := sqlx.SelectContext(ctx, exec, &names, query); err != nil {
		return nil, mapError("[CategoryRepo] list names", err)
	}
	return names, nil
}

func (r *CategoryRepository) List(ctx context.Context, exec sqlx.ExtContext) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY display_order, name`

	categories := []model.Category{}
	if err := sqlx.SelectContext(ctx, exec, &categories, query); err != nil {
		return nil, mapError("[CategoryRepo] list categories", err)
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	var category model.Category
	if err := sqlx.GetContext(ctx, exec, &category, query, id); err != nil {
		return nil, mapError("[CategoryRepo] get category", err)
	}
	return &category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, exec sqlx.ExtContext, category *model.Category) (*model.Category, error) {
	query := `
		INSERT INTO categories (name, description, is_required, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + categoryColumns

	var created model.Category
	err := sqlx.GetContext(ctx, exec, &created, query,
		category.Name, category.Description, category.IsRequired, category.DisplayOrder, category.IsActive)
	if err != nil {
		return nil, mapError("[CategoryRepo] insert category", err)
	}
	return &created, nil
}

func (r *CategoryRepository) Update(ctx context.Context, exec sqlx.ExtContext, category *model.Category) (*model.Category, error) {
	query := `
		UPDATE categories
		SET name = $2, description = $3, is_required = $4, display_order = $5, is_active = $6
		WHERE id = $1
		RETURNING ` + categoryColumns

	var updated model.Category
	err := sqlx.GetContext(ctx, exec, &updated, query,
		category.ID, category.Name, category.Description, category.IsRequired, category.DisplayOrder, category.IsActive)
	if err != nil {
		return nil, mapError("[CategoryRepo] update category", err)
	}
	return &updated, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	var deleted int64
	if err := sqlx.GetContext(ctx, exec, &deleted, `DELETE FROM categories WHERE id = $1 RETURNING id`, id); err != nil {
		return mapError("[CategoryRepo] delete category", err)
	}
	return nil
}
