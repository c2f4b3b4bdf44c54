package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"newmodern_back_end/internal/models"
)

func TestGenerateOrderConfirmationHTML(t *testing.T) {
	product := models.PopulatedProduct{
		ID:    primitive.NewObjectID(),
		Name:  "Casque audio",
		Price: 59.9,
	}
	order := models.PopulatedOrder{
		ID: primitive.NewObjectID(),
		OrderItems: []models.PopulatedOrderItem{
			{ID: primitive.NewObjectID(), Quantity: 2, Product: &product},
		},
		Street:     "Rue des Lilas",
		Number:     "12",
		City:       "Bruxelles",
		TotalPrice: 119.8,
	}

	html := GenerateOrderConfirmationHTML(order)

	assert.Contains(t, html, "Casque audio")
	assert.Contains(t, html, "119.80€")
	assert.Contains(t, html, "Rue des Lilas")
}

func TestGenerateOrderConfirmationHTMLDanglingProduct(t *testing.T) {
	order := models.PopulatedOrder{
		OrderItems: []models.PopulatedOrderItem{
			{ID: primitive.NewObjectID(), Quantity: 1, Product: nil},
		},
	}

	html := GenerateOrderConfirmationHTML(order)
	assert.Contains(t, html, "Produit indisponible")
}
