package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/developia-II/catalog-api/internal/validation"
)

// Variant is a purchasable configuration of a product. Variants live
// embedded in their parent document.
type Variant struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Name           string             `bson:"name" json:"name"`
	SKU            string             `bson:"sku" json:"sku"`
	AdditionalCost float64            `bson:"additionalCost" json:"additionalCost"`
	StockCount     int                `bson:"stockCount" json:"stockCount"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	CategoryID  primitive.ObjectID `bson:"category" json:"-"`
	Variants    []Variant          `bson:"variants" json:"variants"`
	Images      []string           `bson:"images" json:"images"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	Discount    float64            `bson:"discount" json:"discount"` // percent
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`

	// Populated from the categories collection on read.
	Category *CategorySummary `bson:"-" json:"-"`
}

func (p Product) DiscountedPrice() float64 {
	return p.Price * (1 - p.Discount/100)
}

// Variant returns the embedded variant with the given id.
func (p *Product) Variant(id primitive.ObjectID) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// MarshalJSON emits category as the populated summary when available (the
// bare id otherwise) and adds the derived discountedPrice.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	a := alias(p)
	if a.Variants == nil {
		a.Variants = []Variant{}
	}
	if a.Images == nil {
		a.Images = []string{}
	}

	var category any
	switch {
	case p.Category != nil:
		category = p.Category
	case !p.CategoryID.IsZero():
		category = p.CategoryID
	}

	return json.Marshal(struct {
		alias
		Category        any     `json:"category"`
		DiscountedPrice float64 `json:"discountedPrice"`
	}{
		alias:           a,
		Category:        category,
		DiscountedPrice: p.DiscountedPrice(),
	})
}

type VariantInput struct {
	Name           string   `json:"name" validate:"required,max=50"`
	SKU            string   `json:"sku" validate:"required,max=50"`
	AdditionalCost *float64 `json:"additionalCost" validate:"omitnil,min=0"`
	StockCount     *int     `json:"stockCount" validate:"required,min=0"`
}

func (in VariantInput) toVariant() Variant {
	v := Variant{
		ID:   primitive.NewObjectID(),
		Name: in.Name,
		SKU:  in.SKU,
	}
	if in.AdditionalCost != nil {
		v.AdditionalCost = *in.AdditionalCost
	}
	if in.StockCount != nil {
		v.StockCount = *in.StockCount
	}
	return v
}

func sanitizeVariants(variants []VariantInput) {
	for i := range variants {
		variants[i].Name = validation.Clean(variants[i].Name)
		variants[i].SKU = validation.Clean(variants[i].SKU)
	}
}

func toVariants(in []VariantInput) []Variant {
	out := make([]Variant, 0, len(in))
	for _, v := range in {
		out = append(out, v.toVariant())
	}
	return out
}

// DuplicateSKU reports the first SKU that appears more than once.
func DuplicateSKU(variants []VariantInput) (string, bool) {
	seen := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		if _, ok := seen[v.SKU]; ok {
			return v.SKU, true
		}
		seen[v.SKU] = struct{}{}
	}
	return "", false
}

type CreateProductInput struct {
	Name        string         `json:"name" validate:"required,max=100"`
	Description string         `json:"description" validate:"required,max=1000"`
	Price       *float64       `json:"price" validate:"required,min=0"`
	Category    string         `json:"category" validate:"required,mongodb"`
	Variants    []VariantInput `json:"variants" validate:"omitempty,dive"`
	Images      []string       `json:"images" validate:"omitempty,dive,url"`
	IsActive    *bool          `json:"isActive"`
	Discount    *float64       `json:"discount" validate:"omitnil,min=0,max=100"`
}

func (in *CreateProductInput) Sanitize() {
	in.Name = validation.Clean(in.Name)
	in.Description = validation.Clean(in.Description)
	in.Category = validation.Clean(in.Category)
	in.Images = validation.TrimAll(in.Images)
	sanitizeVariants(in.Variants)
}

func (in CreateProductInput) ToProduct(categoryID primitive.ObjectID, now time.Time) Product {
	p := Product{
		Name:        in.Name,
		Description: in.Description,
		CategoryID:  categoryID,
		Variants:    toVariants(in.Variants),
		Images:      in.Images,
		IsActive:    true,
		CreatedAt:   now,
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.Discount != nil {
		p.Discount = *in.Discount
	}
	return p
}

type UpdateProductInput struct {
	Name        *string        `json:"name" validate:"omitnil,min=1,max=100"`
	Description *string        `json:"description" validate:"omitnil,min=1,max=1000"`
	Price       *float64       `json:"price" validate:"omitnil,min=0"`
	Category    *string        `json:"category" validate:"omitnil,mongodb"`
	Variants    []VariantInput `json:"variants" validate:"omitempty,dive"`
	Images      []string       `json:"images" validate:"omitempty,dive,url"`
	IsActive    *bool          `json:"isActive"`
	Discount    *float64       `json:"discount" validate:"omitnil,min=0,max=100"`
}

func (in *UpdateProductInput) Sanitize() {
	in.Name = validation.CleanPtr(in.Name)
	in.Description = validation.CleanPtr(in.Description)
	in.Category = validation.CleanPtr(in.Category)
	in.Images = validation.TrimAll(in.Images)
	sanitizeVariants(in.Variants)
}

func (in UpdateProductInput) IsEmpty() bool {
	return in.Name == nil && in.Description == nil && in.Price == nil &&
		in.Category == nil && in.Variants == nil && in.Images == nil &&
		in.IsActive == nil && in.Discount == nil
}

// SetDocument is the $set payload for the fields present in the input.
// A variants list replaces the existing one and issues fresh variant ids.
func (in UpdateProductInput) SetDocument() bson.M {
	set := bson.M{}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.Category != nil {
		if id, err := primitive.ObjectIDFromHex(*in.Category); err == nil {
			set["category"] = id
		}
	}
	if in.Variants != nil {
		set["variants"] = toVariants(in.Variants)
	}
	if in.Images != nil {
		set["images"] = in.Images
	}
	if in.IsActive != nil {
		set["isActive"] = *in.IsActive
	}
	if in.Discount != nil {
		set["discount"] = *in.Discount
	}
	return set
}

type UpdateStockInput struct {
	StockCount *int `json:"stockCount" validate:"omitnil,min=0"`
}
