package product

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"newmodern_back_end/internal/database"
)

// uploadToMinio pousse un fichier vers le bucket et retourne son URL publique
func uploadToMinio(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	bucket := os.Getenv("MINIO_BUCKET")

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	// ✅ Nom unique du fichier
	objectName := fmt.Sprintf("products/%s%s", uuid.New().String(), filepath.Ext(fileHeader.Filename))

	_, err = database.MinIO.PutObject(ctx, bucket, objectName, file, fileHeader.Size,
		minio.PutObjectOptions{ContentType: fileHeader.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	// ✅ URL publique (à adapter selon ton reverse proxy)
	publicBase := os.Getenv("MINIO_PUBLIC_URL")
	if publicBase == "" {
		publicBase = fmt.Sprintf("http://%s", os.Getenv("MINIO_ENDPOINT"))
	}
	return fmt.Sprintf("%s/%s/%s", publicBase, bucket, objectName), nil
}

// === PUT /api/products/:id/image — image miniature ===
func UploadProductImage(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun fichier reçu"})
		return
	}

	ctx := context.Background()

	url, err := uploadToMinio(ctx, fileHeader)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload MinIO", "details": err.Error()})
		return
	}

	res, err := getProductCollection().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"image": url}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Produit introuvable"})
		return
	}

	invalidateProductsCache(ctx)

	c.JSON(http.StatusOK, gin.H{"message": "✅ Image uploadée et liée au produit", "image": url})
}

// === PUT /api/products/:id/gallery — galerie d'images ===
func UploadGalleryImages(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Formulaire multipart invalide"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucun fichier reçu"})
		return
	}

	ctx := context.Background()

	// L'ordre d'envoi des fichiers est conservé dans la galerie
	urls := make([]string, 0, len(files))
	for _, fileHeader := range files {
		url, err := uploadToMinio(ctx, fileHeader)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload MinIO", "details": err.Error()})
			return
		}
		urls = append(urls, url)
	}

	err = getProductCollection().FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"images": urls}}).Err()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	invalidateProductsCache(ctx)

	c.JSON(http.StatusOK, gin.H{"message": "✅ Galerie mise à jour", "images": urls})
}
