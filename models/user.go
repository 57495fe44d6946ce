package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account document. Cart is declared for parity with the
// stored schema but cart lookups go through carts.userId.
type User struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Username     string              `json:"username" bson:"username" validate:"required,max=64"`
	PasswordHash string              `json:"-" bson:"passwordHash" validate:"required"`
	Cart         *primitive.ObjectID `json:"cart,omitempty" bson:"cart,omitempty"`
	CreatedAt    time.Time           `json:"createdAt" bson:"createdAt"`
}

// Identity is the authenticated principal a session resolves to.
type Identity struct {
	UserID   primitive.ObjectID
	Username string
	TokenID  string
}

// Authenticated reports whether the identity carries a user.
func (i *Identity) Authenticated() bool {
	return i != nil && !i.UserID.IsZero()
}
