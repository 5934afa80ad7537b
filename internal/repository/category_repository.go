package repository

import (
	"context"
	"errors"

	"gagyebu/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var categoryColumns = []string{"id", "name", "type", "color", "icon", "created_at"}

type CategoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCategoryRepository(db *pgxpool.Pool, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CategoryRepository) Create(ctx context.Context, cat *models.Category) error {
	query := squirrel.Insert("categories").
		Columns(categoryColumns...).
		Values(cat.ID, cat.Name, cat.Type, cat.Color, cat.Icon, cat.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByName looks a category up by exact name. Returns ErrNotFound when the
// name does not exist.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name})
}

func (r *CategoryRepository) getOne(ctx context.Context, pred interface{}) (*models.Category, error) {
	query := squirrel.Select(categoryColumns...).
		From("categories").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var cat models.Category
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&cat.ID, &cat.Name, &cat.Type, &cat.Color, &cat.Icon, &cat.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &cat, nil
}

// List returns categories sorted by name, optionally filtered by type.
func (r *CategoryRepository) List(ctx context.Context, categoryType string) ([]*models.Category, error) {
	query := squirrel.Select(categoryColumns...).
		From("categories").
		OrderBy("name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if categoryType != "" {
		query = query.Where(squirrel.Eq{"type": categoryType})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Type, &cat.Color, &cat.Icon, &cat.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, &cat)
	}

	return categories, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, cat *models.Category) error {
	query := squirrel.Update("categories").
		Set("name", cat.Name).
		Set("type", cat.Type).
		Set("color", cat.Color).
		Set("icon", cat.Icon).
		Where(squirrel.Eq{"id": cat.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("categories").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// NameExists reports whether another category already uses name. excludeID
// skips the category being renamed.
func (r *CategoryRepository) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	query := squirrel.Select("COUNT(*)").
		From("categories").
		Where(squirrel.Eq{"name": name}).
		PlaceholderFormat(squirrel.Dollar)

	if excludeID != uuid.Nil {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return false, err
	}

	return count > 0, nil
}
