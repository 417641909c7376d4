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

func GetAuditLog(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/audit"
		defer handlePanic(c, route)

		entries, err := eng.Store.ListAuditEntries(c.Request.Context())
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "audit log could not be fetched")
			return
		}
		if entries == nil {
			entries = []models.AuditEntry{}
		}

		c.JSON(http.StatusOK, entries)
	}
}

func UndoAuditEntry(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/audit/:id/undo"
		defer handlePanic(c, route)

		entryID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		actor := actorFromContext(c, models.RoleAdmin)
		err = eng.Undo(c.Request.Context(), entryID, actor)
		if err != nil {
			var undoErr *engine.UndoError
			switch {
			case errors.As(err, &undoErr):
				respondWithError(c, http.StatusBadRequest, route, undoErr.Error())
			case errors.Is(err, store.ErrNotFound):
				respondWithError(c, http.StatusNotFound, route, "entry not found")
			default:
				respondWithError(c, http.StatusInternalServerError, route, "db error")
			}
			return
		}

		log.Printf("[AUDIT] [INFO] entry %s undone by %s", entryID.Hex(), actor)
		c.JSON(http.StatusOK, gin.H{"message": "mutation undone"})
	}
}

func ClearAuditLog(eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/audit"
		defer handlePanic(c, route)

		actor := actorFromContext(c, models.RoleAdmin)
		if err := eng.ClearAuditLog(c.Request.Context(), actor); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Printf("[AUDIT] [INFO] log cleared by %s", actor)
		c.JSON(http.StatusOK, gin.H{"message": "audit log cleared"})
	}
}
