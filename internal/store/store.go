// Package store regroupe l'accès aux données des commandes. Les handles de
// collections sont injectés explicitement depuis main — pas d'état global ici.
package store

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound : le document demandé n'existe pas
var ErrNotFound = errors.New("document introuvable")

type OrderStore struct {
	Orders     *mongo.Collection
	OrderItems *mongo.Collection
	Products   *mongo.Collection
	Categories *mongo.Collection
	Users      *mongo.Collection
}

func NewOrderStore(ordersDB, productsDB, categoriesDB, usersDB *mongo.Database) *OrderStore {
	return &OrderStore{
		Orders:     ordersDB.Collection("orders"),
		OrderItems: ordersDB.Collection("order_items"),
		Products:   productsDB.Collection("products"),
		Categories: categoriesDB.Collection("categories"),
		Users:      usersDB.Collection("users"),
	}
}
