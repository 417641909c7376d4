package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureDBConnection(ctx context.Context, db *mongo.Database) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Client().Ping(checkCtx, readpref.Primary())
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// actorFromContext identifies the initiating actor for the audit ledger from
// the auth claims the guard middleware stored, falling back to a role label.
func actorFromContext(c *gin.Context, fallback string) string {
	claims, ok := c.Get("claims")
	if !ok {
		return fallback
	}
	mapClaims, ok := claims.(jwt.MapClaims)
	if !ok {
		return fallback
	}
	if email, ok := mapClaims["email"].(string); ok && email != "" {
		return email
	}
	return fallback
}
