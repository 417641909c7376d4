package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"deliveryhub/internal/engine"
	"deliveryhub/internal/models"
	"deliveryhub/internal/store"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity" binding:"required"`
}

type createOrderCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address" binding:"required"`
}

type createOrderRequest struct {
	Items          []createOrderItemRequest   `json:"items" binding:"required"`
	Customer       createOrderCustomerRequest `json:"customer" binding:"required"`
	MerchantID     string                     `json:"merchantId" binding:"required"`
	CashOnDelivery bool                       `json:"cashOnDelivery"`
	PromoCode      string                     `json:"promoCode"`
	PointsRedeemed int                        `json:"pointsRedeemed"`
	DiscountAmount float64                    `json:"discountAmount"`
}

type createSpecialRequestRequest struct {
	Customer createOrderCustomerRequest `json:"customer" binding:"required"`
	Notes    string                     `json:"notes" binding:"required"`
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(eng *engine.Engine, db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		order, err := buildOrderFromRequest(req)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		created, err := eng.CreateOrder(c.Request.Context(), order, actorFromContext(c, models.RoleCustomer))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ORDER] [INFO] order created:", created.Number)
		c.JSON(http.StatusCreated, gin.H{
			"orderId": created.ID.Hex(),
			"number":  created.Number,
			"status":  created.Status,
		})
	}
}

func CreateSpecialRequest(eng *engine.Engine, db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/special"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createSpecialRequestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Notes) == "" {
			respondWithError(c, http.StatusBadRequest, route, "notes must not be empty")
			return
		}

		order := models.Order{
			Customer: models.OrderCustomer(req.Customer),
			Notes:    strings.TrimSpace(req.Notes),
		}

		created, err := eng.CreateOrder(c.Request.Context(), order, actorFromContext(c, models.RoleCustomer))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ORDER] [INFO] special request created:", created.Number)
		c.JSON(http.StatusCreated, gin.H{
			"orderId": created.ID.Hex(),
			"number":  created.Number,
			"status":  created.Status,
		})
	}
}

/* =========================
   GET ORDERS
========================= */

func GetOrders(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		var filter store.OrderFilter
		if raw := c.Query("status"); raw != "" {
			status := models.OrderStatus(raw)
			if !status.IsValid() {
				respondWithError(c, http.StatusBadRequest, route, "unknown status filter")
				return
			}
			filter.Status = &status
		}

		orders, err := eng.Store.ListOrders(c.Request.Context(), filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "orders could not be fetched")
			return
		}
		if orders == nil {
			orders = []models.Order{}
		}

		c.JSON(http.StatusOK, orders)
	}
}

func GetOrder(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		order, err := eng.Store.GetOrder(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

/* =========================
   BUILD ORDER
========================= */

func buildOrderFromRequest(req createOrderRequest) (models.Order, error) {
	if len(req.Items) == 0 {
		return models.Order{}, errors.New("at least one item is required")
	}

	merchantID, err := primitive.ObjectIDFromHex(req.MerchantID)
	if err != nil {
		return models.Order{}, errors.New("invalid merchantId")
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return models.Order{}, errors.New("quantity must be greater than zero")
		}
		if item.Price < 0 {
			return models.Order{}, errors.New("price must not be negative")
		}
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      strings.TrimSpace(item.Name),
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	total := computeItemsTotal(items)
	if err := validateDiscountFields(total, req.DiscountAmount, req.PointsRedeemed); err != nil {
		return models.Order{}, err
	}
	final := computeFinalPrice(total, req.DiscountAmount)
	paid, unpaid, paymentStatus := resolvePayment(final, req.CashOnDelivery)

	return models.Order{
		Customer:       models.OrderCustomer(req.Customer),
		MerchantID:     &merchantID,
		Items:          items,
		TotalPrice:     total,
		CashOnDelivery: req.CashOnDelivery,
		PromoCode:      strings.TrimSpace(req.PromoCode),
		PointsRedeemed: req.PointsRedeemed,
		DiscountAmount: req.DiscountAmount,
		FinalPrice:     final,
		PaidAmount:     paid,
		UnpaidAmount:   unpaid,
		PaymentStatus:  paymentStatus,
	}, nil
}
