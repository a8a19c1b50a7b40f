// Package seed loads the FixieStore demo catalog into the product store.
package seed

import (
	"context"
	"fmt"

	"fixiestore/internal/domain"
)

type ProductWriter interface {
	UpsertBySlug(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type AdminSetter interface {
	SetAdmin(ctx context.Context, email string, admin bool) error
}

type productSeed struct {
	Slug          string
	Name          string
	Description   string
	Price         int64
	OriginalPrice int64
	Category      string
	Brand         string
	Featured      bool
	Stock         int
	Specs         []domain.Specification
	Related       []string
}

const demoImage = "/images/products/fixgear-pro.png"

var catalog = []productSeed{
	{
		Slug: "fixgear-pro-single-speed", Name: "FixGear Pro Single Speed",
		Description: "Sepeda fixie premium dengan frame aluminium ringan dan desain minimalis yang cocok untuk urban cycling.",
		Price:       2500000, OriginalPrice: 3000000, Category: "fixie", Brand: "FixGear", Featured: true, Stock: 8,
		Specs: specs("Frame", "Aluminium 6061", "Fork", "Carbon Steel", "Wheel Size", "700c", "Chain", "KMC Z410", "Weight", "8.5 kg"),
		Related: []string{"deep-rim-wheelset-40mm", "continental-gatorskin-700x25c", "brooks-b17-leather-saddle"},
	},
	{
		Slug: "urban-rider-classic", Name: "Urban Rider Classic",
		Description: "Sepeda fixie entry level dengan kualitas terbaik untuk pemula yang ingin merasakan pengalaman berkendara fixed gear.",
		Price:       1800000, Category: "fixie", Brand: "FixGear", Stock: 12,
		Specs: specs("Frame", "Hi-Ten Steel", "Fork", "Hi-Ten Steel", "Wheel Size", "700c", "Chain", "Basic Chain", "Weight", "10 kg"),
	},
	{
		Slug: "street-master-elite", Name: "Street Master Elite",
		Description: "Sepeda fixie premium untuk pengendara profesional dengan komponen berkualitas tinggi.",
		Price:       3200000, Category: "fixie", Brand: "FixGear", Featured: true, Stock: 4,
		Specs: specs("Frame", "Carbon Steel Chromoly", "Fork", "Carbon Fiber", "Wheel Size", "700c", "Chain", "KMC Z510HX", "Weight", "7.8 kg"),
		Related: []string{"sram-omnium-crankset", "track-drop-bar-31-8mm"},
	},
	{
		Slug: "deep-rim-wheelset-40mm", Name: "Deep Rim Wheelset 40mm",
		Description: "Velg deep rim 40mm untuk performa aerodinamis yang lebih baik.",
		Price:       450000, Category: "velg", Brand: "FixGear", Stock: 15,
		Specs: specs("Rim Depth", "40mm", "Material", "Aluminium Alloy", "Spoke Count", "32H", "Hub", "Sealed Bearing", "Weight", "1.8 kg/set"),
	},
	{
		Slug: "classic-track-wheelset", Name: "Classic Track Wheelset",
		Description: "Velg track klasik dengan desain timeless untuk fixie.",
		Price:       320000, Category: "velg", Brand: "FixGear", Stock: 15,
		Specs: specs("Rim Depth", "25mm", "Material", "Aluminium", "Spoke Count", "36H", "Hub", "Loose Ball", "Weight", "2.1 kg/set"),
	},
	{
		Slug: "continental-gatorskin-700x25c", Name: "Continental Gatorskin 700x25c",
		Description: "Ban premium dengan perlindungan tusukan yang sangat baik.",
		Price:       180000, Category: "ban", Brand: "Continental", Stock: 30,
		Specs: specs("Size", "700x25c", "TPI", "180", "Weight", "240g", "Protection", "PolyX Breaker", "Compound", "Pure Grip"),
	},
	{
		Slug: "michelin-pro4-service-course", Name: "Michelin Pro4 Service Course",
		Description: "Ban balap dengan grip dan durabilitas superior.",
		Price:       220000, Category: "ban", Brand: "Michelin", Stock: 30,
		Specs: specs("Size", "700x23c", "TPI", "220", "Weight", "215g", "Technology", "Bi-Compound", "Color", "Black"),
	},
	{
		Slug: "sram-omnium-crankset", Name: "SRAM Omnium Crankset",
		Description: "Crankset track premium dari SRAM untuk performa maksimal.",
		Price:       850000, Category: "gear", Brand: "SRAM", Featured: true, Stock: 6,
		Specs: specs("Crank Length", "165mm, 170mm, 175mm", "BCD", "130mm", "Chainring", "48T", "Material", "Forged Aluminum", "Bottom Bracket", "GXP"),
	},
	{
		Slug: "track-frame-chromoly", Name: "Track Frame Chromoly",
		Description: "Frame track chromoly steel dengan geometri agresif untuk performa optimal.",
		Price:       1200000, Category: "frame", Brand: "FixGear", Stock: 5,
		Specs: specs("Material", "Chromoly Steel", "Size", "52cm, 54cm, 56cm, 58cm", "Bottom Bracket", "English Threaded", "Dropouts", "Track Ends", "Weight", "2.1 kg"),
	},
	{
		Slug: "brooks-b17-leather-saddle", Name: "Brooks B17 Leather Saddle",
		Description: "Sadel kulit premium handmade dari Brooks England.",
		Price:       650000, Category: "saddle", Brand: "Brooks", Stock: 10,
		Specs: specs("Material", "Vegetable Tanned Leather", "Rails", "Steel", "Length", "275mm", "Width", "170mm", "Weight", "520g"),
	},
	{
		Slug: "track-drop-bar-31-8mm", Name: "Track Drop Bar 31.8mm",
		Description: "Stang drop bar aluminum untuk posisi aerodinamis.",
		Price:       280000, Category: "stang", Brand: "FixGear", Stock: 20,
		Specs: specs("Clamp Diameter", "31.8mm", "Width", "420mm", "Drop", "140mm", "Reach", "75mm", "Material", "Aluminum 6061"),
	},
}

func specs(kv ...string) []domain.Specification {
	out := make([]domain.Specification, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, domain.Specification{Key: kv[i], Value: kv[i+1]})
	}
	return out
}

// Apply upserts the demo catalog by slug and returns how many products it wrote.
// Related products are linked in a second pass once every product has an ID.
// Running it again refreshes the same rows.
func Apply(ctx context.Context, products ProductWriter) (int, error) {
	ids := make(map[string]string, len(catalog))
	for _, s := range catalog {
		p, err := products.UpsertBySlug(ctx, s.product(nil))
		if err != nil {
			return len(ids), fmt.Errorf("upsert product %s: %w", s.Slug, err)
		}
		ids[s.Slug] = p.ID
	}

	for _, s := range catalog {
		if len(s.Related) == 0 {
			continue
		}
		related := make([]string, 0, len(s.Related))
		for _, slug := range s.Related {
			id, ok := ids[slug]
			if !ok {
				return len(ids), fmt.Errorf("product %s: related slug %s is not in the catalog", s.Slug, slug)
			}
			related = append(related, id)
		}
		if _, err := products.UpsertBySlug(ctx, s.product(related)); err != nil {
			return len(ids), fmt.Errorf("link related products of %s: %w", s.Slug, err)
		}
	}
	return len(ids), nil
}

// PromoteAdmin grants the admin flag to an existing user.
func PromoteAdmin(ctx context.Context, users AdminSetter, email string) error {
	if err := users.SetAdmin(ctx, email, true); err != nil {
		return fmt.Errorf("promote %s: %w", email, err)
	}
	return nil
}

func (s productSeed) product(related []string) domain.Product {
	p := domain.Product{
		Slug:            s.Slug,
		Name:            s.Name,
		Description:     s.Description,
		Price:           s.Price,
		Stock:           s.Stock,
		ImageURL:        demoImage,
		Category:        s.Category,
		Brand:           s.Brand,
		Featured:        s.Featured,
		RelatedProducts: related,
		Specifications:  s.Specs,
	}
	if s.OriginalPrice > 0 {
		op := s.OriginalPrice
		p.OriginalPrice = &op
	}
	return p
}
