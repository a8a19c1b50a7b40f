package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	"fixiestore/internal/domain"

	"github.com/go-playground/validator/v10"
)

// ProductForm is the admin payload for creating or replacing a product.
type ProductForm struct {
	Slug            string      `json:"slug" validate:"omitempty,max=120,slug"`
	Name            string      `json:"name" validate:"required,max=200"`
	Description     string      `json:"description" validate:"max=5000"`
	Price           int64       `json:"price" validate:"gte=0"`
	OriginalPrice   *int64      `json:"originalPrice" validate:"omitempty,gte=0"`
	Stock           int         `json:"stock" validate:"gte=0"`
	ImageURL        string      `json:"imageUrl" validate:"omitempty,url,max=2048"`
	Category        string      `json:"category" validate:"omitempty,max=40"`
	Brand           string      `json:"brand" validate:"max=120"`
	Featured        bool        `json:"featured"`
	RelatedProducts []string    `json:"relatedProducts" validate:"max=24,dive,uuid"`
	Specifications  []SpecInput `json:"specifications" validate:"max=50,dive"`
	Variants        []Variant   `json:"variants" validate:"max=50,dive"`
}

type SpecInput struct {
	Key   string `json:"key" validate:"required,max=80"`
	Value string `json:"value" validate:"required,max=500"`
}

type Variant struct {
	Name       string `json:"name" validate:"required,max=120"`
	SKU        string `json:"sku" validate:"max=64"`
	PriceDelta int64  `json:"priceDelta"`
	Stock      int    `json:"stock" validate:"gte=0"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormError lists every field of a ProductForm that failed to decode or validate.
type FormError struct {
	Fields []FieldError
}

func (e *FormError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid product: " + strings.Join(parts, "; ")
}

// Unwrap lets callers treat form errors as invalid input.
func (e *FormError) Unwrap() error {
	return domain.ErrInvalid
}

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	unknownFieldRe = regexp.MustCompile(`json: unknown field "([^"]+)"`)
	formValidator  = newFormValidator()
)

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// ParseProductForm decodes a JSON product form, rejecting unknown fields, then
// trims and validates it. Any failure is a *FormError.
func ParseProductForm(r io.Reader) (ProductForm, error) {
	var form ProductForm
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&form); err != nil {
		return ProductForm{}, decodeError(err)
	}
	if dec.More() {
		return ProductForm{}, &FormError{Fields: []FieldError{{Message: "body must hold a single JSON object"}}}
	}
	form.normalize()
	if err := form.Validate(); err != nil {
		return ProductForm{}, err
	}
	return form, nil
}

// Validate runs the field rules. It returns nil or a *FormError.
func (f ProductForm) Validate() error {
	err := formValidator.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &FormError{Fields: []FieldError{{Message: err.Error()}}}
	}
	out := &FormError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   strings.TrimPrefix(fe.Namespace(), "ProductForm."),
			Message: ruleMessage(fe),
		})
	}
	return out
}

func (f *ProductForm) normalize() {
	f.Slug = strings.ToLower(strings.TrimSpace(f.Slug))
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.ImageURL = strings.TrimSpace(f.ImageURL)
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	f.Brand = strings.TrimSpace(f.Brand)
	for i := range f.RelatedProducts {
		f.RelatedProducts[i] = strings.ToLower(strings.TrimSpace(f.RelatedProducts[i]))
	}
	for i := range f.Specifications {
		f.Specifications[i].Key = strings.TrimSpace(f.Specifications[i].Key)
		f.Specifications[i].Value = strings.TrimSpace(f.Specifications[i].Value)
	}
	for i := range f.Variants {
		f.Variants[i].Name = strings.TrimSpace(f.Variants[i].Name)
		f.Variants[i].SKU = strings.TrimSpace(f.Variants[i].SKU)
	}
}

func (f ProductForm) product(id string) domain.Product {
	p := domain.Product{
		ID:              id,
		Slug:            f.Slug,
		Name:            f.Name,
		Description:     f.Description,
		Price:           f.Price,
		OriginalPrice:   f.OriginalPrice,
		Stock:           f.Stock,
		ImageURL:        f.ImageURL,
		Category:        f.Category,
		Brand:           f.Brand,
		Featured:        f.Featured,
		RelatedProducts: append([]string{}, f.RelatedProducts...),
		Specifications:  make([]domain.Specification, 0, len(f.Specifications)),
		Variants:        make([]domain.Variant, 0, len(f.Variants)),
	}
	for _, s := range f.Specifications {
		p.Specifications = append(p.Specifications, domain.Specification{Key: s.Key, Value: s.Value})
	}
	for _, v := range f.Variants {
		p.Variants = append(p.Variants, domain.Variant{Name: v.Name, SKU: v.SKU, PriceDelta: v.PriceDelta, Stock: v.Stock})
	}
	return p
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		return &FormError{Fields: []FieldError{{Field: typeErr.Field, Message: "must be a " + typeErr.Type.String()}}}
	case errors.As(err, &syntaxErr):
		return &FormError{Fields: []FieldError{{Message: fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)}}}
	case errors.Is(err, io.EOF):
		return &FormError{Fields: []FieldError{{Message: "body is empty"}}}
	}
	if m := unknownFieldRe.FindStringSubmatch(err.Error()); m != nil {
		return &FormError{Fields: []FieldError{{Field: m[1], Message: "unknown field"}}}
	}
	return &FormError{Fields: []FieldError{{Message: err.Error()}}}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " long"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a product ID"
	case "slug":
		return "must contain lowercase letters, digits and single dashes"
	}
	return "failed " + fe.Tag()
}
