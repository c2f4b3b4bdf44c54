package user

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"newmodern_back_end/internal/database"
	"newmodern_back_end/internal/models"
	"newmodern_back_end/internal/utils"
)

func getUserCollection() *mongo.Collection {
	if database.MongoUsersDB == nil {
		panic("❌ MongoUsersDB non initialisée — as-tu bien appelé database.ConnectDatabases() ?")
	}
	return database.MongoUsersDB.Collection("users")
}

// 🔵 Lister les utilisateurs (le hash de mot de passe n'est jamais sérialisé)
func GetUsers(c *gin.Context) {
	ctx := context.Background()

	cursor, err := getUserCollection().Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération utilisateurs"})
		return
	}

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur décodage utilisateurs"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// 🔵 Un utilisateur par ID
func GetUserByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	var u models.User
	if err := getUserCollection().FindOne(context.Background(), bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Utilisateur introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération utilisateur"})
		return
	}

	c.JSON(http.StatusOK, u)
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	IsAdmin  bool   `json:"is_admin"`
}

// 🟢 Créer un utilisateur (mot de passe hashé en Argon2id)
func CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les champs 'name', 'email' et 'password' sont obligatoires"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur hashage mot de passe"})
		return
	}

	u := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		IsAdmin:      req.IsAdmin,
		DateCreated:  time.Now(),
	}

	res, err := getUserCollection().InsertOne(context.Background(), u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	u.ID = res.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusOK, u)
}
