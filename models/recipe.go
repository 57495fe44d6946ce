package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Recipe struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title        string             `json:"title" bson:"title" validate:"required"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	Category     string             `json:"category,omitempty" bson:"category,omitempty"`
	Difficulty   string             `json:"difficulty,omitempty" bson:"difficulty,omitempty"`
	Ingredients  []string           `json:"ingredients,omitempty" bson:"ingredients,omitempty"`
	Instructions string             `json:"instructions,omitempty" bson:"instructions,omitempty"`
	PrepTime     string             `json:"prepTime,omitempty" bson:"prepTime,omitempty"`
	Servings     int                `json:"servings,omitempty" bson:"servings,omitempty"`
	Image        string             `json:"image,omitempty" bson:"image,omitempty"`
	Thumbnail    string             `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	Extra        map[string]string  `json:"extra,omitempty" bson:"extra,omitempty"` // any other submitted field
	CreatedBy    primitive.ObjectID `json:"createdBy" bson:"createdBy" validate:"required"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`

	// Creator is filled in on reads, never stored.
	Creator *User `json:"creator,omitempty" bson:"-"`
}

// RecipeFilter narrows the catalog listing. Empty fields match anything.
type RecipeFilter struct {
	Category   string
	Difficulty string
}
