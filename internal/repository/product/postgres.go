package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"fixiestore/internal/domain"
	"fixiestore/internal/repository/pgutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id::text, COALESCE(slug, ''), name, COALESCE(description, ''), price, original_price, stock,
       COALESCE(image_url, ''), COALESCE(category, ''), COALESCE(brand, ''), featured,
       related_products, specifications, variants, created_at`

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

func (r *postgresRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var (
		where []string
		args  []any
	)
	if c := strings.TrimSpace(filter.Category); c != "" {
		args = append(args, c)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR COALESCE(brand, '') ILIKE $%d)", len(args), len(args)))
	}
	if filter.FeaturedOnly {
		where = append(where, "featured")
	}

	q := "SELECT " + productColumns + "\nFROM products"
	if len(where) > 0 {
		q += "\nWHERE " + strings.Join(where, " AND ")
	}
	q += "\nORDER BY created_at DESC, id"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list filter=%+v error=%v", filter, err)
		return nil, err
	}
	result, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		r.logger.Printf("product repo: list rows filter=%+v error=%v", filter, err)
		return nil, err
	}
	r.logger.Printf("product repo: list filter=%+v count=%d", filter, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := "SELECT " + productColumns + "\nFROM products\nWHERE id = $1"
	rows, err := r.pool.Query(ctx, q, id)
	if err != nil {
		return nil, r.notFoundOr(err, "get", id)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, r.notFoundOr(err, "get", id)
	}
	return &p, nil
}

func (r *postgresRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	q := "SELECT " + productColumns + "\nFROM products\nWHERE id::text = ANY($1)\nORDER BY created_at DESC, id"
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		r.logger.Printf("product repo: get many count=%d error=%v", len(ids), err)
		return nil, err
	}
	return pgx.CollectRows(rows, scanProduct)
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
INSERT INTO products (slug, name, description, price, original_price, stock, image_url, category, brand, featured,
                      related_products, specifications, variants)
VALUES (NULLIF($1, ''), $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $11, $12, $13)
RETURNING ` + productColumns
	rows, err := r.pool.Query(ctx, q, productArgs(p)...)
	if err != nil {
		return nil, r.writeErr(err, "create", p.Name)
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, r.writeErr(err, "create", p.Name)
	}
	r.logger.Printf("product repo: created id=%s name=%q", created.ID, created.Name)
	return &created, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	q := `
UPDATE products SET
    slug = NULLIF($1, ''),
    name = $2,
    description = NULLIF($3, ''),
    price = $4,
    original_price = $5,
    stock = $6,
    image_url = NULLIF($7, ''),
    category = NULLIF($8, ''),
    brand = NULLIF($9, ''),
    featured = $10,
    related_products = $11,
    specifications = $12,
    variants = $13
WHERE id = $14
RETURNING ` + productColumns
	args := append(productArgs(p), p.ID)
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, r.writeErr(err, "update", p.ID)
	}
	updated, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, r.writeErr(err, "update", p.ID)
	}
	r.logger.Printf("product repo: updated id=%s", updated.ID)
	return &updated, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return r.notFoundOr(err, "delete", id)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: deleted id=%s", id)
	return nil
}

// UpsertBySlug inserts a product or overwrites the one sharing its slug. Used by seed and import.
func (r *postgresRepo) UpsertBySlug(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if strings.TrimSpace(p.Slug) == "" {
		return nil, errors.New("product repo: upsert requires a slug")
	}
	q := `
INSERT INTO products (slug, name, description, price, original_price, stock, image_url, category, brand, featured,
                      related_products, specifications, variants)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $11, $12, $13)
ON CONFLICT (slug) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    original_price = EXCLUDED.original_price,
    stock = EXCLUDED.stock,
    image_url = EXCLUDED.image_url,
    category = EXCLUDED.category,
    brand = EXCLUDED.brand,
    featured = EXCLUDED.featured,
    specifications = EXCLUDED.specifications,
    variants = EXCLUDED.variants
RETURNING ` + productColumns
	rows, err := r.pool.Query(ctx, q, productArgs(p)...)
	if err != nil {
		return nil, r.writeErr(err, "upsert", p.Slug)
	}
	res, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		return nil, r.writeErr(err, "upsert", p.Slug)
	}
	r.logger.Printf("product repo: upserted slug=%s id=%s", res.Slug, res.ID)
	return &res, nil
}

func (r *postgresRepo) notFoundOr(err error, op, id string) error {
	if errors.Is(err, pgx.ErrNoRows) || pgutil.IsInvalidInput(err) {
		r.logger.Printf("product repo: %s id=%s not found", op, id)
		return domain.ErrNotFound
	}
	r.logger.Printf("product repo: %s id=%s error=%v", op, id, err)
	return err
}

func (r *postgresRepo) writeErr(err error, op, ref string) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows), pgutil.IsInvalidInput(err):
		return domain.ErrNotFound
	case pgutil.IsUniqueViolation(err):
		return domain.ErrAlreadyExists
	}
	r.logger.Printf("product repo: %s ref=%s error=%v", op, ref, err)
	return err
}

func productArgs(p domain.Product) []any {
	related := p.RelatedProducts
	if related == nil {
		related = []string{}
	}
	specs := p.Specifications
	if specs == nil {
		specs = []domain.Specification{}
	}
	variants := p.Variants
	if variants == nil {
		variants = []domain.Variant{}
	}
	return []any{
		p.Slug,
		p.Name,
		p.Description,
		p.Price,
		p.OriginalPrice,
		p.Stock,
		p.ImageURL,
		p.Category,
		p.Brand,
		p.Featured,
		related,
		specs,
		variants,
	}
}

func scanProduct(row pgx.CollectableRow) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Slug,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.OriginalPrice,
		&p.Stock,
		&p.ImageURL,
		&p.Category,
		&p.Brand,
		&p.Featured,
		&p.RelatedProducts,
		&p.Specifications,
		&p.Variants,
		&p.CreatedAt,
	)
	return p, err
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
