package product

import (
	"context"
	"errors"
	"testing"

	"fixiestore/internal/dbtest"
	"fixiestore/internal/domain"
)

func TestPostgres_CreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	orig := int64(3000000)
	created, err := repo.Create(ctx, domain.Product{
		Name:           "FixGear Pro Single Speed",
		Price:          2500000,
		OriginalPrice:  &orig,
		Stock:          5,
		Category:       "fixie",
		Brand:          "FixGear",
		Featured:       true,
		Specifications: []domain.Specification{{Key: "Frame", Value: "Aluminium 6061"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at, got %+v", created)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != created.Name || got.OriginalPrice == nil || *got.OriginalPrice != orig {
		t.Fatalf("unexpected product %+v", got)
	}
	if len(got.Specifications) != 1 || got.Specifications[0].Value != "Aluminium 6061" {
		t.Fatalf("specifications not round-tripped: %+v", got.Specifications)
	}

	got.Price = 2400000
	got.Stock = 0
	updated, err := repo.Update(ctx, *got)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Price != 2400000 || updated.Stock != 0 {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := repo.Delete(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestPostgres_GetByIDMalformed(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)
	if _, err := repo.GetByID(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgres_ListFilters(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	for _, p := range []domain.Product{
		{Name: "Urban Rider Classic", Price: 1800000, Category: "fixie", Brand: "FixGear"},
		{Name: "Ban Slick 700x23", Price: 180000, Category: "ban", Brand: "Continental", Featured: true},
		{Name: "Saddle Racing", Price: 250000, Category: "saddle", Brand: "Selle"},
	} {
		if _, err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create %s: %v", p.Name, err)
		}
	}

	all, err := repo.List(ctx, domain.ProductFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 products, got %d", len(all))
	}
	if all[0].Name != "Saddle Racing" {
		t.Fatalf("expected newest first, got %s", all[0].Name)
	}

	byCategory, err := repo.List(ctx, domain.ProductFilter{Category: "ban"})
	if err != nil || len(byCategory) != 1 || byCategory[0].Category != "ban" {
		t.Fatalf("category filter: %v %+v", err, byCategory)
	}

	byBrand, err := repo.List(ctx, domain.ProductFilter{Search: "continental"})
	if err != nil || len(byBrand) != 1 || byBrand[0].Brand != "Continental" {
		t.Fatalf("brand search: %v %+v", err, byBrand)
	}

	byName, err := repo.List(ctx, domain.ProductFilter{Search: "RIDER"})
	if err != nil || len(byName) != 1 {
		t.Fatalf("name search: %v %+v", err, byName)
	}

	featured, err := repo.List(ctx, domain.ProductFilter{FeaturedOnly: true})
	if err != nil || len(featured) != 1 || !featured[0].Featured {
		t.Fatalf("featured filter: %v %+v", err, featured)
	}

	none, err := repo.List(ctx, domain.ProductFilter{Search: "100%"})
	if err != nil || len(none) != 0 {
		t.Fatalf("expected wildcard to be escaped: %v %+v", err, none)
	}
}

func TestPostgres_UpsertBySlug(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	first, err := repo.UpsertBySlug(ctx, domain.Product{Slug: "demo-gear", Name: "Gear 44T", Price: 150000, Category: "gear"})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	second, err := repo.UpsertBySlug(ctx, domain.Product{Slug: "demo-gear", Name: "Gear 46T", Price: 160000, Category: "gear"})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if first.ID != second.ID || second.Name != "Gear 46T" || second.Price != 160000 {
		t.Fatalf("unexpected upsert result %+v / %+v", first, second)
	}

	if _, err := repo.UpsertBySlug(ctx, domain.Product{Name: "no slug"}); err == nil {
		t.Fatalf("expected error without slug")
	}

	many, err := repo.GetByIDs(ctx, []string{first.ID, "00000000-0000-0000-0000-000000000000"})
	if err != nil || len(many) != 1 {
		t.Fatalf("GetByIDs: %v %+v", err, many)
	}
}
