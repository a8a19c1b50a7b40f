package cart

import (
	"context"
	"io"
	"log"

	"fixiestore/internal/domain"
	"fixiestore/internal/repository/pgutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const addItemSQL = `
INSERT INTO cart_items (user_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, product_id) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) ListItems(ctx context.Context, userID string) ([]Item, error) {
	const q = `
SELECT product_id::text, quantity, created_at
FROM cart_items
WHERE user_id = $1
ORDER BY created_at ASC, id
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		r.logger.Printf("cart repo: list user=%s error=%v", userID, err)
		return nil, err
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Item, error) {
		var it Item
		err := row.Scan(&it.ProductID, &it.Quantity, &it.CreatedAt)
		return it, err
	})
	if err != nil {
		r.logger.Printf("cart repo: list rows user=%s error=%v", userID, err)
		return nil, err
	}
	return items, nil
}

// AddItem inserts a row or increments the quantity of the existing one.
func (r *postgresRepo) AddItem(ctx context.Context, userID, productID string, quantity int) error {
	if _, err := r.pool.Exec(ctx, addItemSQL, userID, productID, quantity); err != nil {
		return r.mapErr(err, "add", userID, productID)
	}
	r.logger.Printf("cart repo: add user=%s product=%s qty=%d", userID, productID, quantity)
	return nil
}

// AddItems applies AddItem for every item in one transaction.
func (r *postgresRepo) AddItems(ctx context.Context, userID string, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(addItemSQL, userID, it.ProductID, it.Quantity)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return r.mapErr(err, "add many", userID, "")
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Printf("cart repo: merged user=%s lines=%d", userID, len(items))
	return nil
}

// SetQuantity replaces the quantity of an existing row. A quantity of zero or less
// deletes the row; a missing row is left alone.
func (r *postgresRepo) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity <= 0 {
		return r.RemoveItem(ctx, userID, productID)
	}
	_, err := r.pool.Exec(ctx, `
UPDATE cart_items
SET quantity = $3
WHERE user_id = $1 AND product_id = $2
`, userID, productID, quantity)
	if err != nil {
		return r.mapErr(err, "set", userID, productID)
	}
	return nil
}

func (r *postgresRepo) RemoveItem(ctx context.Context, userID, productID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return r.mapErr(err, "remove", userID, productID)
	}
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context, userID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return r.mapErr(err, "clear", userID, "")
	}
	r.logger.Printf("cart repo: cleared user=%s rows=%d", userID, cmd.RowsAffected())
	return nil
}

func (r *postgresRepo) mapErr(err error, op, userID, productID string) error {
	if pgutil.IsForeignKeyViolation(err) || pgutil.IsInvalidInput(err) {
		return domain.ErrNotFound
	}
	r.logger.Printf("cart repo: %s user=%s product=%s error=%v", op, userID, productID, err)
	return err
}
