package domain

import (
	"errors"
	"time"
)

// ItemStatus represents the sale state of a listed item.
type ItemStatus string

const (
	ItemStatusSelling ItemStatus = "selling"
	ItemStatusPending ItemStatus = "pending"
	ItemStatusSold    ItemStatus = "sold"
)

var ErrItemNotFound = errors.New("item not found")
var ErrItemNotAvailable = errors.New("item is not available for sale")
var ErrForbidden = errors.New("access forbidden")
var ErrInvalidArgument = errors.New("missing or invalid argument")

// Valid reports whether s is one of the known item statuses.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusSelling, ItemStatusPending, ItemStatusSold:
		return true
	}
	return false
}

// Coordinates represents an optional geographic point attached to a listing.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Item is a second-hand listing published by a seller. Status is mutated only
// by the owner or by the order lifecycle engine.
type Item struct {
	ID            string       `json:"id" bson:"_id,omitempty"`
	Title         string       `json:"title" bson:"title"`
	Description   string       `json:"description" bson:"description"`
	Price         float64      `json:"price" bson:"price"`
	OriginalPrice float64      `json:"original_price,omitempty" bson:"original_price,omitempty"`
	Category      string       `json:"category" bson:"category"`
	Tags          []string     `json:"tags,omitempty" bson:"tags,omitempty"`
	Condition     string       `json:"condition" bson:"condition"`
	Status        ItemStatus   `json:"status" bson:"status"`
	Images        []string     `json:"images,omitempty" bson:"images,omitempty"`
	Location      string       `json:"location" bson:"location"`
	Coordinates   *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	Seller        UserSnapshot `json:"seller" bson:"seller"`
	Views         int          `json:"views" bson:"views"`
	Likes         int          `json:"likes" bson:"likes"`
	InterestedIDs []string     `json:"interested_users,omitempty" bson:"interested_users,omitempty"`
	CreatedAt     time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" bson:"updated_at"`
}

// ItemSnapshot is the denormalized copy of an item embedded in an order,
// frozen at order creation time.
type ItemSnapshot struct {
	ID        string   `json:"id" bson:"id"`
	Title     string   `json:"title" bson:"title"`
	Price     float64  `json:"price" bson:"price"`
	Images    []string `json:"images,omitempty" bson:"images,omitempty"`
	Condition string   `json:"condition,omitempty" bson:"condition,omitempty"`
}

// Snapshot captures the embeddable view of the item.
func (i *Item) Snapshot() ItemSnapshot {
	return ItemSnapshot{
		ID:        i.ID,
		Title:     i.Title,
		Price:     i.Price,
		Images:    i.Images,
		Condition: i.Condition,
	}
}
