package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart is the single per-user cart document.
type Cart struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId" validate:"required"`
	Items     []CartItem         `json:"items" bson:"items"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CartItem is one line item. It has its own id, distinct from the recipe.
type CartItem struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	RecipeID primitive.ObjectID `json:"recipeId" bson:"recipeId" validate:"required"`
	Quantity int                `json:"quantity" bson:"quantity"`
}

// CartView is a cart with its recipe references resolved.
type CartView struct {
	Cart  Cart           `json:"cart"`
	Lines []CartLineView `json:"lines"`
}

// CartLineView pairs a line item with its recipe. Recipe is nil when the
// referenced recipe no longer resolves.
type CartLineView struct {
	Item   CartItem `json:"item"`
	Recipe *Recipe  `json:"recipe,omitempty"`
}

// Empty reports whether the view has no line items.
func (v CartView) Empty() bool {
	return len(v.Lines) == 0
}
