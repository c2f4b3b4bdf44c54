package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Statuts autorisés pour une commande. Le front envoie du texte libre,
// on le contraint ici à un ensemble fermé.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

var orderStatuses = map[string]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
}

// IsValidOrderStatus indique si le statut fait partie de l'ensemble fermé
func IsValidOrderStatus(status string) bool {
	return orderStatuses[status]
}

// OrderItem : une ligne de commande. Créé uniquement lors de la création de
// la commande, supprimé uniquement en cascade avec elle, jamais modifié.
type OrderItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	ProductID primitive.ObjectID `bson:"product" json:"product"`
}

// Order : la commande possède ses lignes par liste d'identifiants,
// dans l'ordre de soumission. total_price est toujours calculé côté serveur.
type Order struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OrderItemIDs []primitive.ObjectID `bson:"order_items" json:"orderItems"`
	Street       string               `bson:"street" json:"street"`
	Number       string               `bson:"number" json:"number"`
	Division     string               `bson:"division" json:"division"`
	City         string               `bson:"city" json:"city"`
	Zip          string               `bson:"zip" json:"zip"`
	Country      string               `bson:"country" json:"country"`
	Phone        string               `bson:"phone" json:"phone"`
	Observations string               `bson:"observations" json:"observations"`
	Status       string               `bson:"status" json:"status"`
	TotalPrice   float64              `bson:"total_price" json:"total_price"`
	UserID       primitive.ObjectID   `bson:"user" json:"user"`
	DateOrdered  time.Time            `bson:"date_ordered" json:"date_ordered"`
}

// OrderWithUser : commande pour le listing, avec {id, name} de l'utilisateur
// à la place de l'ObjectId
type OrderWithUser struct {
	ID           primitive.ObjectID   `json:"id"`
	OrderItemIDs []primitive.ObjectID `json:"orderItems"`
	Street       string               `json:"street"`
	Number       string               `json:"number"`
	Division     string               `json:"division"`
	City         string               `json:"city"`
	Zip          string               `json:"zip"`
	Country      string               `json:"country"`
	Phone        string               `json:"phone"`
	Observations string               `json:"observations"`
	Status       string               `json:"status"`
	TotalPrice   float64              `json:"total_price"`
	User         *UserRef             `json:"user"`
	DateOrdered  time.Time            `json:"date_ordered"`
}

// PopulatedOrderItem : ligne avec le produit (et sa catégorie) développés.
// Product peut être nil si le produit a été supprimé depuis — référence
// dénormalisée assumée, voir PopulatedOrder.
type PopulatedOrderItem struct {
	ID       primitive.ObjectID `json:"id"`
	Quantity int                `json:"quantity"`
	Product  *PopulatedProduct  `json:"product"`
}

// PopulatedOrder : commande entièrement développée (GET /:id et historique
// utilisateur) — lignes avec produit + catégorie, utilisateur en {id, name}
type PopulatedOrder struct {
	ID           primitive.ObjectID   `json:"id"`
	OrderItems   []PopulatedOrderItem `json:"orderItems"`
	Street       string               `json:"street"`
	Number       string               `json:"number"`
	Division     string               `json:"division"`
	City         string               `json:"city"`
	Zip          string               `json:"zip"`
	Country      string               `json:"country"`
	Phone        string               `json:"phone"`
	Observations string               `json:"observations"`
	Status       string               `json:"status"`
	TotalPrice   float64              `json:"total_price"`
	User         *UserRef             `json:"user"`
	DateOrdered  time.Time            `json:"date_ordered"`
}

// WithUser projette la commande pour le listing
func (o Order) WithUser(u *UserRef) OrderWithUser {
	return OrderWithUser{
		ID:           o.ID,
		OrderItemIDs: o.OrderItemIDs,
		Street:       o.Street,
		Number:       o.Number,
		Division:     o.Division,
		City:         o.City,
		Zip:          o.Zip,
		Country:      o.Country,
		Phone:        o.Phone,
		Observations: o.Observations,
		Status:       o.Status,
		TotalPrice:   o.TotalPrice,
		User:         u,
		DateOrdered:  o.DateOrdered,
	}
}

// Populate projette la commande entièrement développée
func (o Order) Populate(u *UserRef, items []PopulatedOrderItem) PopulatedOrder {
	return PopulatedOrder{
		ID:           o.ID,
		OrderItems:   items,
		Street:       o.Street,
		Number:       o.Number,
		Division:     o.Division,
		City:         o.City,
		Zip:          o.Zip,
		Country:      o.Country,
		Phone:        o.Phone,
		Observations: o.Observations,
		Status:       o.Status,
		TotalPrice:   o.TotalPrice,
		User:         u,
		DateOrdered:  o.DateOrdered,
	}
}
