package order

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"newmodern_back_end/internal/models"
	"newmodern_back_end/internal/store"
)

// Store : opérations de persistance dont les handlers de commande ont besoin.
// L'implémentation réelle est store.OrderStore, injectée depuis main.
type Store interface {
	InsertOrderItem(ctx context.Context, item models.OrderItem) (primitive.ObjectID, error)
	FindOrderItemPrice(ctx context.Context, itemID primitive.ObjectID) (quantity int, price float64, err error)
	ProductExists(ctx context.Context, productID primitive.ObjectID) (bool, error)
	InsertOrder(ctx context.Context, order models.Order) (primitive.ObjectID, error)
	FindAllOrders(ctx context.Context) ([]models.OrderWithUser, error)
	FindOrderByID(ctx context.Context, id primitive.ObjectID) (*models.PopulatedOrder, error)
	FindOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.PopulatedOrder, error)
	UpdateOrderStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error)
	DeleteOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	DeleteOrderItems(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	TotalSales(ctx context.Context) (float64, error)
	CountOrders(ctx context.Context) (int64, error)
	FindUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Handler struct {
	store Store

	// Notifier est appelé en arrière-plan après une création réussie
	// (e-mail de confirmation). Remplaçable dans les tests.
	Notifier func(user models.User, order models.PopulatedOrder)
}

func NewHandler(s Store) *Handler {
	return &Handler{store: s}
}

const requestTimeout = 10 * time.Second

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// GET /api/orders — toutes les commandes, nom d'utilisateur résolu,
// plus récentes d'abord
func (h *Handler) GetOrders(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	orders, err := h.store.FindAllOrders(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	// Une liste vide est une réponse valide, pas une absence
	if orders == nil {
		orders = []models.OrderWithUser{}
	}
	c.JSON(http.StatusOK, orders)
}

// GET /api/orders/:id — commande entièrement développée
func (h *Handler) GetOrderByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de commande invalide"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	order, err := h.store.FindOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Commande introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commande"})
		return
	}

	c.JSON(http.StatusOK, order)
}

type createOrderLine struct {
	Quantity int    `json:"quantity"`
	Product  string `json:"product"`
}

type createOrderRequest struct {
	OrderItems   []createOrderLine `json:"orderItems"`
	Street       string            `json:"street"`
	Number       string            `json:"number"`
	Division     string            `json:"division"`
	City         string            `json:"city"`
	Zip          string            `json:"zip"`
	Country      string            `json:"country"`
	Phone        string            `json:"phone"`
	Observations string            `json:"observations"`
	Status       string            `json:"status"`
	TotalPrice   float64           `json:"total_price"` // toujours ignoré : recalculé côté serveur
	User         string            `json:"user"`
	DateOrdered  *time.Time        `json:"date_ordered"`
}

// POST /api/orders — crée les lignes une par une, relit les prix stockés,
// force le total calculé, persiste la commande
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.OrderItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La commande ne contient aucun article"})
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.User)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	status := req.Status
	if status == "" {
		status = models.StatusPending
	}
	if !models.IsValidOrderStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut de commande inconnu: " + req.Status})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	// Valide chaque ligne avant de commencer à persister
	lines := make([]models.OrderItem, 0, len(req.OrderItems))
	for _, line := range req.OrderItems {
		if line.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "La quantité doit être supérieure à zéro"})
			return
		}
		productID, err := primitive.ObjectIDFromHex(line.Product)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID de produit invalide: " + line.Product})
			return
		}
		exists, err := h.store.ProductExists(ctx, productID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification produit"})
			return
		}
		if !exists {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Produit introuvable: " + line.Product})
			return
		}
		lines = append(lines, models.OrderItem{Quantity: line.Quantity, ProductID: productID})
	}

	// 1. Une ligne persistée par article, la liste d'ids garde l'ordre
	// de soumission
	itemIDs := make([]primitive.ObjectID, 0, len(lines))
	for _, item := range lines {
		id, err := h.store.InsertOrderItem(ctx, item)
		if err != nil {
			log.Println("❌ Erreur création ligne de commande:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de créer les articles de la commande"})
			return
		}
		itemIDs = append(itemIDs, id)
	}

	// 2-3. Relit chaque ligne, résout le prix produit stocké, additionne.
	// Le total_price du payload n'est jamais pris en compte.
	var totalPrice float64
	for _, itemID := range itemIDs {
		quantity, price, err := h.store.FindOrderItemPrice(ctx, itemID)
		if err != nil {
			log.Printf("❌ Prix introuvable pour la ligne %s: %v", itemID.Hex(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de calculer le total de la commande"})
			return
		}
		totalPrice += price * float64(quantity)
	}

	dateOrdered := time.Now()
	if req.DateOrdered != nil {
		dateOrdered = *req.DateOrdered
	}

	order := models.Order{
		OrderItemIDs: itemIDs,
		Street:       req.Street,
		Number:       req.Number,
		Division:     req.Division,
		City:         req.City,
		Zip:          req.Zip,
		Country:      req.Country,
		Phone:        req.Phone,
		Observations: req.Observations,
		Status:       status,
		TotalPrice:   totalPrice,
		UserID:       userID,
		DateOrdered:  dateOrdered,
	}

	// 5. Persiste la commande. Pas de rollback des lignes déjà créées :
	// on trace les orphelines au lieu de les masquer.
	orderID, err := h.store.InsertOrder(ctx, order)
	if err != nil {
		log.Printf("⚠️ Commande non persistée, lignes orphelines: %v (%v)", itemIDs, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de finaliser votre commande"})
		return
	}
	order.ID = orderID

	h.sendConfirmation(order)

	c.JSON(http.StatusOK, order)
}

// sendConfirmation envoie l'e-mail de confirmation en arrière-plan,
// jamais bloquant pour la requête
func (h *Handler) sendConfirmation(order models.Order) {
	if h.Notifier == nil {
		return
	}
	go func() {
		ctx, cancel := requestContext()
		defer cancel()

		user, err := h.store.FindUser(ctx, order.UserID)
		if err != nil {
			log.Println("⚠️ Utilisateur introuvable pour l'e-mail de confirmation:", err)
			return
		}
		populated, err := h.store.FindOrderByID(ctx, order.ID)
		if err != nil {
			log.Println("⚠️ Relecture commande impossible pour l'e-mail de confirmation:", err)
			return
		}
		h.Notifier(*user, *populated)
	}()
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// PUT /api/orders/:id — ne met à jour que le statut
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de commande invalide"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.IsValidOrderStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut de commande inconnu: " + req.Status})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	order, err := h.store.UpdateOrderStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Commande introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour commande"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// DELETE /api/orders/:id — supprime la commande puis ses lignes.
// La cascade est best-effort : un échec partiel est tracé, pas remonté.
func (h *Handler) DeleteOrder(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de commande invalide"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	order, err := h.store.DeleteOrder(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Nous n'avons pas trouvé cette commande"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	deleted, err := h.store.DeleteOrderItems(ctx, order.OrderItemIDs)
	if err != nil {
		log.Printf("⚠️ Cascade incomplète pour la commande %s: %v", id.Hex(), err)
	} else if int(deleted) < len(order.OrderItemIDs) {
		log.Printf("⚠️ Cascade incomplète pour la commande %s: %d/%d lignes supprimées",
			id.Hex(), deleted, len(order.OrderItemIDs))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Commande supprimée avec succès"})
}

// GET /api/orders/get/totalsales — somme des totaux de toutes les commandes.
// Zéro commande donne 0, jamais une erreur.
func (h *Handler) GetTotalSales(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	total, err := h.store.TotalSales(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de générer le total des ventes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"totalsales": total})
}

// GET /api/orders/get/count — nombre de commandes.
// Le nom du champ fait partie du contrat attendu par le front historique.
func (h *Handler) GetOrderCount(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	count, err := h.store.CountOrders(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur comptage commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quantidadePedidos": count})
}

// GET /api/orders/get/userorders/:userid — historique d'un utilisateur,
// entièrement développé, plus récentes d'abord
func (h *Handler) GetUserOrders(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	orders, err := h.store.FindOrdersByUser(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération historique"})
		return
	}

	if orders == nil {
		orders = []models.PopulatedOrder{}
	}
	c.JSON(http.StatusOK, orders)
}
