package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/developia-II/catalog-api/internal/validation"
)

type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`

	// Products referencing this category. Computed on read, never stored.
	Products []Product `bson:"-" json:"products,omitempty"`
}

// CategorySummary is the populated form of Product.category.
type CategorySummary struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Name string             `bson:"name" json:"name"`
}

type CreateCategoryInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"max=500"`
	IsActive    *bool  `json:"isActive"`
}

func (in *CreateCategoryInput) Sanitize() {
	in.Name = validation.Clean(in.Name)
	in.Description = validation.Clean(in.Description)
}

func (in CreateCategoryInput) ToCategory(now time.Time) Category {
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	return Category{
		Name:        in.Name,
		Description: in.Description,
		IsActive:    isActive,
		CreatedAt:   now,
	}
}

type UpdateCategoryInput struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=50"`
	Description *string `json:"description" validate:"omitnil,max=500"`
	IsActive    *bool   `json:"isActive"`
}

func (in *UpdateCategoryInput) Sanitize() {
	in.Name = validation.CleanPtr(in.Name)
	in.Description = validation.CleanPtr(in.Description)
}

func (in UpdateCategoryInput) IsEmpty() bool {
	return in.Name == nil && in.Description == nil && in.IsActive == nil
}

// SetDocument is the $set payload for the fields present in the input.
func (in UpdateCategoryInput) SetDocument() bson.M {
	set := bson.M{}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.IsActive != nil {
		set["isActive"] = *in.IsActive
	}
	return set
}
