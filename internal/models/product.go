package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product : article du catalogue. Le `_id` Mongo est rendu `id` côté JSON
// (front-end friendly), aucun champ de version n'est exposé.
type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description" json:"description"`
	LongDescription string             `bson:"long_description" json:"long_description"`
	Image           string             `bson:"image" json:"image"`
	Images          []string           `bson:"images" json:"images"`
	Brand           string             `bson:"brand" json:"brand"`
	Price           float64            `bson:"price" json:"price"`
	CategoryID      primitive.ObjectID `bson:"category" json:"category"`
	Qty             int                `bson:"qty" json:"qty"`
	Rating          float64            `bson:"rating" json:"rating"`
	NumberReviews   int                `bson:"number_reviews" json:"number_reviews"`
	Featured        bool               `bson:"featured" json:"featured"`
	DateCreated     time.Time          `bson:"date_created" json:"date_created"`
}

// PopulatedProduct : produit avec sa catégorie résolue à la place de l'ObjectId
type PopulatedProduct struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description" json:"description"`
	LongDescription string             `bson:"long_description" json:"long_description"`
	Image           string             `bson:"image" json:"image"`
	Images          []string           `bson:"images" json:"images"`
	Brand           string             `bson:"brand" json:"brand"`
	Price           float64            `bson:"price" json:"price"`
	Category        *Category          `json:"category"`
	Qty             int                `bson:"qty" json:"qty"`
	Rating          float64            `bson:"rating" json:"rating"`
	NumberReviews   int                `bson:"number_reviews" json:"number_reviews"`
	Featured        bool               `bson:"featured" json:"featured"`
	DateCreated     time.Time          `bson:"date_created" json:"date_created"`
}

// Populate attache la catégorie résolue au produit
func (p Product) Populate(cat *Category) PopulatedProduct {
	return PopulatedProduct{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		LongDescription: p.LongDescription,
		Image:           p.Image,
		Images:          p.Images,
		Brand:           p.Brand,
		Price:           p.Price,
		Category:        cat,
		Qty:             p.Qty,
		Rating:          p.Rating,
		NumberReviews:   p.NumberReviews,
		Featured:        p.Featured,
		DateCreated:     p.DateCreated,
	}
}
