package admin

import (
	"errors"
	"strings"
	"testing"

	"fixiestore/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var ferr *FormError
	require.True(t, errors.As(err, &ferr), "expected *FormError, got %T %v", err, err)
	var names []string
	for _, f := range ferr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestParseProductForm_Valid(t *testing.T) {
	body := `{
		"name": "  FixGear Pro Single Speed ",
		"price": 2500000,
		"originalPrice": 3000000,
		"stock": 5,
		"category": "Fixie",
		"imageUrl": "https://cdn.example.com/fixgear.jpg",
		"relatedProducts": ["11111111-1111-4111-8111-111111111111"],
		"specifications": [{"key": "Frame", "value": "Aluminium 6061"}],
		"variants": [{"name": "52cm", "stock": 2}]
	}`
	form, err := ParseProductForm(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "FixGear Pro Single Speed", form.Name)
	assert.Equal(t, "fixie", form.Category)
	require.NotNil(t, form.OriginalPrice)
	assert.Equal(t, int64(3000000), *form.OriginalPrice)

	p := form.product("id-1")
	assert.Equal(t, "id-1", p.ID)
	assert.Equal(t, []domain.Specification{{Key: "Frame", Value: "Aluminium 6061"}}, p.Specifications)
	assert.Equal(t, 2, p.Variants[0].Stock)
}

func TestParseProductForm_RejectsUnknownField(t *testing.T) {
	_, err := ParseProductForm(strings.NewReader(`{"name": "x", "price": 1, "discount": 5}`))
	assert.Equal(t, []string{"discount"}, fieldNames(t, err))
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestParseProductForm_TypeAndSyntaxErrors(t *testing.T) {
	_, err := ParseProductForm(strings.NewReader(`{"name": "x", "price": "mahal"}`))
	assert.Equal(t, []string{"price"}, fieldNames(t, err))

	_, err = ParseProductForm(strings.NewReader(`{"name": `))
	require.Error(t, err)
	fieldNames(t, err)

	_, err = ParseProductForm(strings.NewReader(``))
	assert.Contains(t, err.Error(), "body is empty")

	_, err = ParseProductForm(strings.NewReader(`{"name":"a"} {"name":"b"}`))
	assert.Contains(t, err.Error(), "single JSON object")
}

func TestParseProductForm_ValidationListsEveryField(t *testing.T) {
	body := `{
		"name": "   ",
		"price": -1,
		"stock": -2,
		"imageUrl": "not a url",
		"slug": "Bad Slug",
		"relatedProducts": ["nope"],
		"specifications": [{"key": "", "value": "x"}],
		"variants": [{"name": "", "stock": -1}]
	}`
	_, err := ParseProductForm(strings.NewReader(body))
	names := fieldNames(t, err)
	for _, want := range []string{
		"name", "price", "stock", "imageUrl", "relatedProducts[0]",
		"specifications[0].key", "variants[0].name", "variants[0].stock",
	} {
		assert.Contains(t, names, want)
	}
	assert.Contains(t, err.Error(), "name: is required")
}

func TestParseProductForm_SlugLowercased(t *testing.T) {
	form, err := ParseProductForm(strings.NewReader(`{"name": "Gear", "price": 1, "slug": " Gear-44T "}`))
	require.NoError(t, err)
	assert.Equal(t, "gear-44t", form.Slug)

	_, err = ParseProductForm(strings.NewReader(`{"name": "Gear", "price": 1, "slug": "gear--44"}`))
	assert.Contains(t, fieldNames(t, err), "slug")
}
