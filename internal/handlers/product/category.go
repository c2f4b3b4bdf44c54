package product

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"newmodern_back_end/internal/database"
	"newmodern_back_end/internal/models"
)

const categoriesCacheKey = "categories:all"

// 🟢 Créer une catégorie
func CreateCategory(c *gin.Context) {
	var cat models.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if cat.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'name' est obligatoire"})
		return
	}

	ctx := context.Background()
	res, err := getCategoryCollection().InsertOne(ctx, cat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	cat.ID = res.InsertedID.(primitive.ObjectID)

	database.RedisClient.Del(ctx, categoriesCacheKey)

	c.JSON(http.StatusOK, cat)
}

// 🔵 Lister les catégories
func GetAllCategories(c *gin.Context) {
	ctx := context.Background()

	// Cache Redis
	if val, err := database.RedisClient.Get(ctx, categoriesCacheKey).Result(); err == nil && val != "" {
		var cached []models.Category
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	cursor, err := getCategoryCollection().Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	cats := []models.Category{}
	if err := cursor.All(ctx, &cats); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if data, err := json.Marshal(cats); err == nil {
		database.RedisClient.Set(ctx, categoriesCacheKey, data, time.Hour)
	}

	c.JSON(http.StatusOK, cats)
}

// 🔵 Une catégorie par ID
func GetCategoryByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de catégorie invalide"})
		return
	}

	var cat models.Category
	if err := getCategoryCollection().FindOne(context.Background(), bson.M{"_id": id}).Decode(&cat); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Catégorie introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération catégorie"})
		return
	}

	c.JSON(http.StatusOK, cat)
}

// 🟡 Mettre à jour une catégorie
func UpdateCategory(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de catégorie invalide"})
		return
	}

	var input struct {
		Name  *string `json:"name"`
		Icon  *string `json:"icon"`
		Color *string `json:"color"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	set := bson.M{}
	if input.Name != nil {
		set["name"] = *input.Name
	}
	if input.Icon != nil {
		set["icon"] = *input.Icon
	}
	if input.Color != nil {
		set["color"] = *input.Color
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucune donnée à mettre à jour"})
		return
	}

	ctx := context.Background()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Category
	err = getCategoryCollection().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Catégorie introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour catégorie"})
		return
	}

	database.RedisClient.Del(ctx, categoriesCacheKey)

	c.JSON(http.StatusOK, updated)
}

// 🔴 Supprimer une catégorie. Les produits qui la référencent ne sont pas
// touchés (référence pendante assumée).
func DeleteCategory(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de catégorie invalide"})
		return
	}

	ctx := context.Background()

	res, err := getCategoryCollection().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression catégorie"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Catégorie introuvable"})
		return
	}

	database.RedisClient.Del(ctx, categoriesCacheKey)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Catégorie supprimée avec succès"})
}
