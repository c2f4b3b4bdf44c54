package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"newmodern_back_end/internal/models"
)

// InsertOrderItem persiste une ligne de commande et retourne son ObjectId
func (s *OrderStore) InsertOrderItem(ctx context.Context, item models.OrderItem) (primitive.ObjectID, error) {
	res, err := s.OrderItems.InsertOne(ctx, item)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// FindOrderItemPrice relit la ligne persistée puis le prix de son produit
// (deuxième lecture — le total est toujours calculé depuis les prix stockés)
func (s *OrderStore) FindOrderItemPrice(ctx context.Context, itemID primitive.ObjectID) (quantity int, price float64, err error) {
	var item models.OrderItem
	if err = s.OrderItems.FindOne(ctx, bson.M{"_id": itemID}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, 0, ErrNotFound
		}
		return 0, 0, err
	}

	var product struct {
		Price float64 `bson:"price"`
	}
	if err = s.Products.FindOne(ctx, bson.M{"_id": item.ProductID},
		options.FindOne().SetProjection(bson.M{"price": 1})).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, 0, ErrNotFound
		}
		return 0, 0, err
	}

	return item.Quantity, product.Price, nil
}

// ProductExists vérifie qu'une référence produit résout bien
func (s *OrderStore) ProductExists(ctx context.Context, productID primitive.ObjectID) (bool, error) {
	count, err := s.Products.CountDocuments(ctx, bson.M{"_id": productID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertOrder persiste la commande et retourne son ObjectId
func (s *OrderStore) InsertOrder(ctx context.Context, order models.Order) (primitive.ObjectID, error) {
	res, err := s.Orders.InsertOne(ctx, order)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// FindAllOrders retourne toutes les commandes, utilisateur résolu en
// {id, name}, triées par date de commande décroissante
func (s *OrderStore) FindAllOrders(ctx context.Context) ([]models.OrderWithUser, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date_ordered", Value: -1}})

	cursor, err := s.Orders.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}

	result := make([]models.OrderWithUser, 0, len(orders))
	for _, o := range orders {
		result = append(result, o.WithUser(s.findUserRef(ctx, o.UserID)))
	}
	return result, nil
}

// FindOrderByID retourne une commande entièrement développée
// (lignes → produit → catégorie, utilisateur en {id, name})
func (s *OrderStore) FindOrderByID(ctx context.Context, id primitive.ObjectID) (*models.PopulatedOrder, error) {
	var order models.Order
	if err := s.Orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	populated := order.Populate(s.findUserRef(ctx, order.UserID), s.populateItems(ctx, order.OrderItemIDs))
	return &populated, nil
}

// FindOrdersByUser : historique d'un utilisateur, même développement que
// FindOrderByID, tri par date décroissante
func (s *OrderStore) FindOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.PopulatedOrder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date_ordered", Value: -1}})

	cursor, err := s.Orders.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}

	userRef := s.findUserRef(ctx, userID)
	result := make([]models.PopulatedOrder, 0, len(orders))
	for _, o := range orders {
		result = append(result, o.Populate(userRef, s.populateItems(ctx, o.OrderItemIDs)))
	}
	return result, nil
}

// UpdateOrderStatus ne touche qu'au champ status et retourne le document
// mis à jour
func (s *OrderStore) UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := s.Orders.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		opts,
	).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// DeleteOrder supprime la commande et retourne le document supprimé
// (la cascade sur les lignes est à la charge de l'appelant)
func (s *OrderStore) DeleteOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.Orders.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// DeleteOrderItems supprime les lignes appartenant à une commande en une
// seule requête multi-documents et retourne le nombre réellement supprimé
func (s *OrderStore) DeleteOrderItems(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.OrderItems.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// TotalSales agrège la somme des total_price de toutes les commandes.
// Un magasin sans commande vaut 0, pas une erreur.
func (s *OrderStore) TotalSales(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalsales": bson.M{"$sum": "$total_price"},
		}}},
	}

	cursor, err := s.Orders.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		TotalSales float64 `bson:"totalsales"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].TotalSales, nil
}

// CountOrders compte toutes les commandes
func (s *OrderStore) CountOrders(ctx context.Context) (int64, error) {
	return s.Orders.CountDocuments(ctx, bson.M{})
}

// FindUser retourne l'utilisateur complet (e-mail de confirmation)
func (s *OrderStore) FindUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.Users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// findUserRef résout {id, name} de l'utilisateur, nil si introuvable —
// une commande dont l'utilisateur a disparu reste lisible
func (s *OrderStore) findUserRef(ctx context.Context, userID primitive.ObjectID) *models.UserRef {
	var ref models.UserRef
	err := s.Users.FindOne(ctx, bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"name": 1})).Decode(&ref)
	if err != nil {
		return nil
	}
	return &ref
}

// populateItems développe chaque ligne avec son produit et la catégorie du
// produit. Une référence produit pendante donne une ligne avec product: null.
func (s *OrderStore) populateItems(ctx context.Context, ids []primitive.ObjectID) []models.PopulatedOrderItem {
	items := make([]models.PopulatedOrderItem, 0, len(ids))

	for _, itemID := range ids {
		var item models.OrderItem
		if err := s.OrderItems.FindOne(ctx, bson.M{"_id": itemID}).Decode(&item); err != nil {
			continue
		}

		populated := models.PopulatedOrderItem{ID: item.ID, Quantity: item.Quantity}

		var product models.Product
		if err := s.Products.FindOne(ctx, bson.M{"_id": item.ProductID}).Decode(&product); err == nil {
			var category *models.Category
			var cat models.Category
			if err := s.Categories.FindOne(ctx, bson.M{"_id": product.CategoryID}).Decode(&cat); err == nil {
				category = &cat
			}
			p := product.Populate(category)
			populated.Product = &p
		}

		items = append(items, populated)
	}
	return items
}
