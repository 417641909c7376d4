package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"deliveryhub/internal/engine"
	"deliveryhub/internal/models"
	"deliveryhub/internal/store"
)

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

type assignDriverRequest struct {
	DriverID     string  `json:"driverId" binding:"required"`
	Fee          float64 `json:"fee"`
	TargetStatus string  `json:"targetStatus" binding:"required"`
}

func TransitionOrder(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req transitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		actor := actorFromContext(c, models.RoleAdmin)
		order, err := eng.Transition(c.Request.Context(), orderID, models.OrderStatus(req.Status), actor)
		if err != nil {
			var transitionErr *engine.TransitionError
			switch {
			case errors.As(err, &transitionErr):
				respondWithError(c, http.StatusConflict, route, transitionErr.Error())
			case errors.Is(err, store.ErrNotFound):
				respondWithError(c, http.StatusNotFound, route, "order not found")
			default:
				respondWithError(c, http.StatusInternalServerError, route, "db error")
			}
			return
		}

		log.Printf("[ORDER] [INFO] %s moved to %s by %s", order.Number, order.Status, actor)
		c.JSON(http.StatusOK, order)
	}
}

func AssignDriver(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/orders/:id/assign"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req assignDriverRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		driverID, err := primitive.ObjectIDFromHex(req.DriverID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid driverId")
			return
		}

		actor := actorFromContext(c, models.RoleAdmin)
		order, err := eng.AssignDriver(c.Request.Context(), orderID, driverID, req.Fee,
			models.OrderStatus(req.TargetStatus), actor)
		if err != nil {
			var assignErr *engine.AssignError
			switch {
			case errors.As(err, &assignErr):
				respondWithError(c, http.StatusBadRequest, route, assignErr.Error())
			case errors.Is(err, store.ErrNotFound):
				respondWithError(c, http.StatusNotFound, route, "order not found")
			default:
				respondWithError(c, http.StatusInternalServerError, route, "db error")
			}
			return
		}

		log.Printf("[ORDER] [INFO] %s assigned to driver %s by %s", order.Number, req.DriverID, actor)
		c.JSON(http.StatusOK, order)
	}
}

func DeleteOrder(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/orders/:id"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		err = eng.DeleteOrder(c.Request.Context(), orderID, actorFromContext(c, models.RoleAdmin))
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
	}
}
