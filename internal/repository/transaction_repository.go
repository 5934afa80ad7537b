package repository

import (
	"context"
	"errors"
	"time"

	"gagyebu/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var transactionColumns = []string{
	"id", "type", "date", "amount", "category", "memo",
	"receipt_image_path", "created_at", "updated_at",
}

// TransactionQuery carries the already-validated list filters. Nil/zero
// fields are not applied.
type TransactionQuery struct {
	DateFrom  *time.Time
	DateTo    *time.Time
	Category  string
	Type      string
	Search    string
	Limit     int
	Offset    int
	SortField string
	SortOrder string
}

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := squirrel.Insert("transactions").
		Columns(transactionColumns...).
		Values(tx.ID, tx.Type, tx.Date, tx.Amount, tx.Category, tx.Memo,
			tx.ReceiptImagePath, tx.CreatedAt, tx.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var tx models.Transaction
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&tx.ID, &tx.Type, &tx.Date, &tx.Amount, &tx.Category, &tx.Memo,
		&tx.ReceiptImagePath, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &tx, nil
}

func (r *TransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	query := squirrel.Update("transactions").
		Set("type", tx.Type).
		Set("date", tx.Date).
		Set("amount", tx.Amount).
		Set("category", tx.Category).
		Set("memo", tx.Memo).
		Set("receipt_image_path", tx.ReceiptImagePath).
		Set("updated_at", tx.UpdatedAt).
		Where(squirrel.Eq{"id": tx.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("transactions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// List returns one page of transactions matching q.
func (r *TransactionRepository) List(ctx context.Context, q TransactionQuery) ([]*models.Transaction, error) {
	query := applyTransactionFilters(squirrel.Select(transactionColumns...).From("transactions"), q).
		OrderBy(q.SortField + " " + q.SortOrder).
		Limit(uint64(q.Limit)).
		Offset(uint64(q.Offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.Type, &tx.Date, &tx.Amount, &tx.Category, &tx.Memo,
			&tx.ReceiptImagePath, &tx.CreatedAt, &tx.UpdatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, &tx)
	}

	return transactions, rows.Err()
}

// Count returns the total number of transactions matching q, ignoring
// pagination.
func (r *TransactionRepository) Count(ctx context.Context, q TransactionQuery) (int64, error) {
	query := applyTransactionFilters(squirrel.Select("COUNT(*)").From("transactions"), q).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// CountByCategory counts transactions referencing a category name. Used by
// the category-delete guard.
func (r *TransactionRepository) CountByCategory(ctx context.Context, name string) (int64, error) {
	query := squirrel.Select("COUNT(*)").
		From("transactions").
		Where(squirrel.Eq{"category": name}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// SumAmount totals amounts of the given type in [from, to].
func (r *TransactionRepository) SumAmount(ctx context.Context, txType models.TransactionType, from, to time.Time) (float64, error) {
	query := squirrel.Select("COALESCE(SUM(amount), 0)").
		From("transactions").
		Where(squirrel.Eq{"type": txType}).
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var total float64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}

	return total, nil
}

func applyTransactionFilters(query squirrel.SelectBuilder, q TransactionQuery) squirrel.SelectBuilder {
	if q.DateFrom != nil {
		query = query.Where(squirrel.GtOrEq{"date": *q.DateFrom})
	}
	if q.DateTo != nil {
		query = query.Where(squirrel.LtOrEq{"date": *q.DateTo})
	}
	if q.Category != "" {
		query = query.Where(squirrel.Eq{"category": q.Category})
	}
	if q.Type != "" {
		query = query.Where(squirrel.Eq{"type": q.Type})
	}
	if q.Search != "" {
		query = query.Where(squirrel.ILike{"memo": "%" + q.Search + "%"})
	}
	return query
}
