package product

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"newmodern_back_end/internal/database"
	"newmodern_back_end/internal/models"
	"newmodern_back_end/internal/services"
)

//
// --- MONGO COLLECTIONS ---
//
func getProductCollection() *mongo.Collection {
	if database.MongoProductsDB == nil {
		panic("❌ MongoProductsDB non initialisée — as-tu bien appelé database.ConnectDatabases() ?")
	}
	return database.MongoProductsDB.Collection("products")
}

func getCategoryCollection() *mongo.Collection {
	if database.MongoCategoriesDB == nil {
		panic("❌ MongoCategoriesDB non initialisée — as-tu bien appelé database.ConnectDatabases() ?")
	}
	return database.MongoCategoriesDB.Collection("categories")
}

const productsCacheKey = "products:all"

func invalidateProductsCache(ctx context.Context) {
	database.RedisClient.Del(ctx, productsCacheKey)
}

//
// --- HANDLERS ---
//

// 🟢 Créer un produit (avec vérification de la catégorie)
func CreateProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if p.Name == "" || p.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les champs 'name' et 'description' sont obligatoires"})
		return
	}
	if p.CategoryID.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'category' est obligatoire"})
		return
	}
	// Stock borné à [0, 255] — empêche les quantités négatives
	if p.Qty < 0 || p.Qty > 255 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'qty' doit être compris entre 0 et 255"})
		return
	}

	ctx := context.Background()

	// ✅ Vérifie que la catégorie existe dans db_categories
	var category bson.M
	err := getCategoryCollection().FindOne(ctx, bson.M{"_id": p.CategoryID}).Decode(&category)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification catégorie"})
		return
	}

	if p.DateCreated.IsZero() {
		p.DateCreated = time.Now()
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	res, err := getProductCollection().InsertOne(ctx, p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	p.ID = res.InsertedID.(primitive.ObjectID)

	invalidateProductsCache(ctx)

	// 🔄 Indexe dans Elasticsearch
	go services.IndexProduct(p)

	c.JSON(http.StatusOK, p)
}

// 🔵 Lister les produits, filtre optionnel ?categories=id1,id2
func GetAllProducts(c *gin.Context) {
	ctx := context.Background()
	categoriesParam := c.Query("categories")

	// ✅ Le cache Redis ne sert que la liste complète
	if categoriesParam == "" {
		if val, err := database.RedisClient.Get(ctx, productsCacheKey).Result(); err == nil && val != "" {
			var cached []models.Product
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
	}

	filter := bson.M{}
	if categoriesParam != "" {
		var ids []primitive.ObjectID
		for _, raw := range strings.Split(categoriesParam, ",") {
			id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "ID de catégorie invalide: " + raw})
				return
			}
			ids = append(ids, id)
		}
		filter["category"] = bson.M{"$in": ids}
	}

	cursor, err := getProductCollection().Find(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if categoriesParam == "" {
		if data, err := json.Marshal(products); err == nil {
			database.RedisClient.Set(ctx, productsCacheKey, data, time.Hour)
		}
	}

	c.JSON(http.StatusOK, products)
}

// 🔵 Un produit par ID, catégorie résolue
func GetProductByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx := context.Background()

	var p models.Product
	if err := getProductCollection().FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produit"})
		return
	}

	var category *models.Category
	var cat models.Category
	if err := getCategoryCollection().FindOne(ctx, bson.M{"_id": p.CategoryID}).Decode(&cat); err == nil {
		category = &cat
	}

	c.JSON(http.StatusOK, p.Populate(category))
}

// 🟡 Mise à jour partielle d'un produit
func UpdateProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input struct {
		Name            *string   `json:"name"`
		Description     *string   `json:"description"`
		LongDescription *string   `json:"long_description"`
		Image           *string   `json:"image"`
		Images          *[]string `json:"images"`
		Brand           *string   `json:"brand"`
		Price           *float64  `json:"price"`
		Category        *string   `json:"category"`
		Qty             *int      `json:"qty"`
		Rating          *float64  `json:"rating"`
		NumberReviews   *int      `json:"number_reviews"`
		Featured        *bool     `json:"featured"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx := context.Background()
	set := bson.M{}

	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.LongDescription != nil {
		set["long_description"] = *input.LongDescription
	}
	if input.Image != nil {
		set["image"] = *input.Image
	}
	if input.Images != nil {
		set["images"] = *input.Images
	}
	if input.Brand != nil {
		set["brand"] = *input.Brand
	}
	if input.Price != nil {
		set["price"] = *input.Price
	}
	if input.Category != nil {
		catID, err := primitive.ObjectIDFromHex(*input.Category)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID de catégorie invalide"})
			return
		}
		var category bson.M
		if err := getCategoryCollection().FindOne(ctx, bson.M{"_id": catID}).Decode(&category); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie introuvable"})
			return
		}
		set["category"] = catID
	}
	if input.Qty != nil {
		if *input.Qty < 0 || *input.Qty > 255 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'qty' doit être compris entre 0 et 255"})
			return
		}
		set["qty"] = *input.Qty
	}
	if input.Rating != nil {
		set["rating"] = *input.Rating
	}
	if input.NumberReviews != nil {
		set["number_reviews"] = *input.NumberReviews
	}
	if input.Featured != nil {
		set["featured"] = *input.Featured
	}

	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucune donnée à mettre à jour"})
		return
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Product
	err = getProductCollection().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	invalidateProductsCache(ctx)
	go services.IndexProduct(updated)

	c.JSON(http.StatusOK, updated)
}

// 🔴 Supprimer un produit. Les lignes de commande historiques gardent leur
// référence — choix assumé, elles se 'populent' alors avec product: null.
func DeleteProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx := context.Background()

	var deleted models.Product
	if err := getProductCollection().FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}

	invalidateProductsCache(ctx)
	go services.RemoveProductFromIndex(deleted.ID)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Produit supprimé avec succès"})
}

// 🔵 Nombre de produits
func GetProductCount(c *gin.Context) {
	count, err := getProductCollection().CountDocuments(context.Background(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur comptage produits"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"productCount": count})
}

// 🔵 Produits mis en avant, limités à :count
func GetFeaturedProducts(c *gin.Context) {
	limit, err := strconv.ParseInt(c.Param("count"), 10, 64)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre 'count' invalide"})
		return
	}

	ctx := context.Background()
	opts := options.Find().SetLimit(limit)

	cursor, err := getProductCollection().Find(ctx, bson.M{"featured": true}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, products)
}

// 🔍 Recherche de produits via Elasticsearch, repli MongoDB si indisponible
func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paramètre 'q' manquant"})
		return
	}

	// 1️⃣ Tentative dans Elasticsearch
	results, err := services.SearchProducts(query)
	if err == nil && len(results) > 0 {
		c.JSON(http.StatusOK, results)
		return
	}

	// 2️⃣ Repli MongoDB : scan + filtre en mémoire (non optimal, suffisant
	// tant qu'Elastic est la voie nominale)
	ctx := context.Background()
	cursor, err := getProductCollection().Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var all []models.Product
	if err := cursor.All(ctx, &all); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	matches := []models.Product{}
	for _, p := range all {
		if containsIgnoreCase(p.Name, query) || containsIgnoreCase(p.Description, query) || containsIgnoreCase(p.Brand, query) {
			matches = append(matches, p)
		}
	}

	c.JSON(http.StatusOK, matches)
}

// Helper pour recherche insensible à la casse
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
