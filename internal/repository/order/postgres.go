package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"fixiestore/internal/domain"
	"fixiestore/internal/repository/pgutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id::text, user_id::text, status, payment_method, shipping_method, COALESCE(shipping_address, ''),
       subtotal, shipping_fee, total_price, created_at`

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

func (r *postgresRepo) PlaceFromCart(ctx context.Context, o domain.Order) (*domain.Order, error) {
	if len(o.Items) == 0 {
		return nil, errors.New("order repo: order has no items")
	}

	var placed domain.Order
	err := r.withTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
INSERT INTO orders (user_id, status, payment_method, shipping_method, shipping_address, subtotal, shipping_fee, total_price)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
RETURNING `+orderColumns,
			o.UserID, o.Status, o.PaymentMethod, o.ShippingMethod, o.ShippingAddress, o.Subtotal, o.ShippingFee, o.TotalPrice)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		placed, err = pgx.CollectExactlyOneRow(rows, scanOrder)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i, item := range o.Items {
			cmd, err := tx.Exec(ctx, `
UPDATE products SET stock = stock - $2
WHERE id = $1 AND stock >= $2
`, item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("reserve stock %s: %w", item.ProductID, err)
			}
			if cmd.RowsAffected() == 0 {
				return fmt.Errorf("product %s: %w", item.ProductID, domain.ErrInsufficientStock)
			}
			if _, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, position, product_id, product_name, unit_price, quantity, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, placed.ID, i, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.LineTotal); err != nil {
				return fmt.Errorf("insert order item %d: %w", i, err)
			}
			if err := releaseCartItem(ctx, tx, o.UserID, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Printf("order repo: place user=%s error=%v", o.UserID, err)
		if pgutil.IsForeignKeyViolation(err) || pgutil.IsInvalidInput(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	placed.Items = append([]domain.OrderItem(nil), o.Items...)
	r.logger.Printf("order repo: placed id=%s user=%s total=%d items=%d", placed.ID, placed.UserID, placed.TotalPrice, len(placed.Items))
	return &placed, nil
}

// releaseCartItem takes the ordered quantity out of the user's cart. Lines added
// after the cart was read keep whatever was not ordered.
func releaseCartItem(ctx context.Context, tx pgx.Tx, userID string, item domain.OrderItem) error {
	if _, err := tx.Exec(ctx, `
DELETE FROM cart_items
WHERE user_id = $1 AND product_id = $2 AND quantity <= $3
`, userID, item.ProductID, item.Quantity); err != nil {
		return fmt.Errorf("clear cart item %s: %w", item.ProductID, err)
	}
	if _, err := tx.Exec(ctx, `
UPDATE cart_items SET quantity = quantity - $3
WHERE user_id = $1 AND product_id = $2 AND quantity > $3
`, userID, item.ProductID, item.Quantity); err != nil {
		return fmt.Errorf("clear cart item %s: %w", item.ProductID, err)
	}
	return nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+orderColumns+"\nFROM orders\nWHERE user_id = $1\nORDER BY created_at DESC, id", userID)
	if err != nil {
		if pgutil.IsInvalidInput(err) {
			return []domain.Order{}, nil
		}
		r.logger.Printf("order repo: list user=%s error=%v", userID, err)
		return nil, err
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []domain.Order{}, nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = i
		orders[i].Items = []domain.OrderItem{}
	}
	itemRows, err := r.pool.Query(ctx, `
SELECT order_id::text, product_id::text, product_name, unit_price, quantity, line_total
FROM order_items
WHERE order_id::text = ANY($1)
ORDER BY order_id, position
`, ids)
	if err != nil {
		r.logger.Printf("order repo: list items user=%s error=%v", userID, err)
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var orderID string
		var it domain.OrderItem
		if err := itemRows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity, &it.LineTotal); err != nil {
			return nil, err
		}
		if i, ok := byID[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetByID returns the order only when it belongs to userID.
func (r *postgresRepo) GetByID(ctx context.Context, userID, id string) (*domain.Order, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+orderColumns+"\nFROM orders\nWHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return nil, r.notFoundOr(err, id)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		return nil, r.notFoundOr(err, id)
	}

	itemRows, err := r.pool.Query(ctx, `
SELECT product_id::text, product_name, unit_price, quantity, line_total
FROM order_items
WHERE order_id = $1
ORDER BY position
`, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items, err = pgx.CollectRows(itemRows, func(row pgx.CollectableRow) (domain.OrderItem, error) {
		var it domain.OrderItem
		err := row.Scan(&it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity, &it.LineTotal)
		return it, err
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			r.logger.Printf("order repo: rollback error=%v", rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *postgresRepo) notFoundOr(err error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) || pgutil.IsInvalidInput(err) {
		return domain.ErrNotFound
	}
	r.logger.Printf("order repo: get id=%s error=%v", id, err)
	return err
}

func scanOrder(row pgx.CollectableRow) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.PaymentMethod,
		&o.ShippingMethod,
		&o.ShippingAddress,
		&o.Subtotal,
		&o.ShippingFee,
		&o.TotalPrice,
		&o.CreatedAt,
	)
	return o, err
}
