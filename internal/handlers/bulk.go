package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"deliveryhub/internal/engine"
	"deliveryhub/internal/models"
)

type bulkAssignRequest struct {
	DriverID string  `json:"driverId" binding:"required"`
	Fee      float64 `json:"fee"`
}

type bulkStatusRequest struct {
	Target string `json:"target" binding:"required"`
}

type bulkDeleteRequest struct {
	Scope string `json:"scope" binding:"required"`
}

// PreviewBulk computes the affected-order count for a bulk verb without
// executing it, so the client can render its confirmation gate. The message
// states count and consequence in one line.
func PreviewBulk(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/bulk/preview"
		defer handlePanic(c, route)

		ctx := c.Request.Context()
		var (
			count   int
			message string
		)

		switch verb := c.Query("verb"); verb {
		case "assign":
			orders, err := eng.PreviewBulkAssign(ctx)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			count = len(orders)
			message = fmt.Sprintf("%d pending orders will be assigned and moved in transit", count)

		case "status":
			target := models.OrderStatus(c.Query("target"))
			orders, err := eng.PreviewBulkStatus(ctx, target)
			if errors.Is(err, engine.ErrUnsupportedBulkTarget) {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			count = len(orders)
			message = fmt.Sprintf("%d orders will be moved to %s", count, target)

		case "delete":
			scope, err := engine.ParseDeleteScope(c.Query("scope"))
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			orders, err := eng.PreviewBulkDelete(ctx, scope)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			count = len(orders)
			message = fmt.Sprintf("%d orders will be deleted permanently", count)

		default:
			respondWithError(c, http.StatusBadRequest, route, "unknown bulk verb "+verb)
			return
		}

		c.JSON(http.StatusOK, gin.H{"affected": count, "message": message})
	}
}

func BulkAssign(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/orders/bulk/assign"
		defer handlePanic(c, route)

		var req bulkAssignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		driverID, err := primitive.ObjectIDFromHex(req.DriverID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid driverId")
			return
		}

		result, err := eng.BulkAssign(c.Request.Context(), driverID, req.Fee,
			actorFromContext(c, models.RoleAdmin))
		if err != nil {
			respondBulkError(c, route, err)
			return
		}

		log.Printf("[BULK] [INFO] assigned %d orders to driver %s", result.Affected, req.DriverID)
		c.JSON(http.StatusOK, result)
	}
}

func BulkStatusUpdate(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/orders/bulk/status"
		defer handlePanic(c, route)

		var req bulkStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		result, err := eng.BulkStatusUpdate(c.Request.Context(), models.OrderStatus(req.Target),
			actorFromContext(c, models.RoleAdmin))
		if err != nil {
			respondBulkError(c, route, err)
			return
		}

		log.Printf("[BULK] [INFO] moved %d orders to %s", result.Affected, req.Target)
		c.JSON(http.StatusOK, result)
	}
}

func BulkDelete(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/orders/bulk/delete"
		defer handlePanic(c, route)

		var req bulkDeleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		scope, err := engine.ParseDeleteScope(req.Scope)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		result, err := eng.BulkDelete(c.Request.Context(), scope, actorFromContext(c, models.RoleAdmin))
		if err != nil {
			respondBulkError(c, route, err)
			return
		}

		log.Printf("[BULK] [INFO] deleted %d orders (scope %s), countersReset=%v",
			result.Affected, req.Scope, result.CountersReset)
		c.JSON(http.StatusOK, result)
	}
}

// respondBulkError maps engine failures onto the single failure signal every
// bulk operation owes its initiator.
func respondBulkError(c *gin.Context, route string, err error) {
	var assignErr *engine.AssignError
	var batchErr *engine.BatchWriteFailure
	switch {
	case errors.As(err, &assignErr):
		respondWithError(c, http.StatusBadRequest, route, assignErr.Error())
	case errors.Is(err, engine.ErrUnsupportedBulkTarget):
		respondWithError(c, http.StatusBadRequest, route, err.Error())
	case errors.As(err, &batchErr):
		log.Printf("[BULK] [ERROR] %v", batchErr)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error":     "bulk operation failed",
			"completed": batchErr.Completed,
		})
	default:
		respondWithError(c, http.StatusInternalServerError, route, "db error")
	}
}
