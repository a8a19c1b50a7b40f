package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fixiestore/internal/domain"
)

type ProductWriter interface {
	UpsertBySlug(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// CSVImporter reads a product CSV and upserts each product by slug.
//
// The header names the columns: slug, name, description, price, original_price,
// stock, category, brand, featured, image_url, spec_key, spec_value. A row with an
// empty slug continues the product above it and only contributes a specification.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryChecker
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryChecker) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
	}
}

type csvRow struct {
	line    int
	product domain.Product
}

// Run parses CSV rows and upserts products in file order. It stops at the first
// invalid row and reports how many products were written before it.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"slug", "name", "price"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing %q column", required)
		}
	}

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		if pick(record, index, "slug") == "" {
			spec, ok := parseSpec(record, index)
			if !ok {
				continue
			}
			if current == nil {
				return imported, fmt.Errorf("line %d: specification row before any product", line)
			}
			current.product.Specifications = append(current.product.Specifications, spec)
			continue
		}

		if current != nil {
			if err := i.save(ctx, current); err != nil {
				return imported, err
			}
			imported++
		}
		row, err := parseRow(record, index, line)
		if err != nil {
			return imported, err
		}
		current = row
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	p := row.product
	if p.Name == "" {
		return fmt.Errorf("line %d: product %q has no name", row.line, p.Slug)
	}
	if p.Category != "" && i.categories != nil {
		ok, err := i.categories.Exists(ctx, p.Category)
		if err != nil {
			return fmt.Errorf("line %d: check category: %w", row.line, err)
		}
		if !ok {
			return fmt.Errorf("line %d: product %q has unknown category %q", row.line, p.Slug, p.Category)
		}
	}
	if _, err := i.products.UpsertBySlug(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", p.Slug, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	p := domain.Product{
		Slug:        strings.ToLower(pick(record, index, "slug")),
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
		ImageURL:    pick(record, index, "image_url"),
		Category:    strings.ToLower(pick(record, index, "category")),
		Brand:       pick(record, index, "brand"),
	}

	var err error
	if p.Price, err = parseAmount(pick(record, index, "price")); err != nil {
		return nil, fmt.Errorf("line %d: price: %w", line, err)
	}
	if raw := pick(record, index, "original_price"); raw != "" {
		op, err := parseAmount(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: original_price: %w", line, err)
		}
		p.OriginalPrice = &op
	}
	if raw := pick(record, index, "stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("line %d: stock must be a non-negative integer, got %q", line, raw)
		}
		p.Stock = stock
	}
	if raw := pick(record, index, "featured"); raw != "" {
		if p.Featured, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("line %d: featured must be true or false, got %q", line, raw)
		}
	}
	if spec, ok := parseSpec(record, index); ok {
		p.Specifications = []domain.Specification{spec}
	}
	return &csvRow{line: line, product: p}, nil
}

// parseAmount reads a whole rupiah amount. Dots and commas used as thousands
// separators are accepted.
func parseAmount(raw string) (int64, error) {
	clean := strings.NewReplacer(".", "", ",", "", " ", "").Replace(raw)
	if clean == "" {
		return 0, errors.New("is required")
	}
	v, err := strconv.ParseInt(clean, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("must be a non-negative whole amount, got %q", raw)
	}
	return v, nil
}

func parseSpec(record []string, index map[string]int) (domain.Specification, bool) {
	key := pick(record, index, "spec_key")
	value := pick(record, index, "spec_value")
	if key == "" || value == "" {
		return domain.Specification{}, false
	}
	return domain.Specification{Key: key, Value: value}, true
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
