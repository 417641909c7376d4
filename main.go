package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"deliveryhub/internal/config"
	"deliveryhub/internal/database"
	"deliveryhub/internal/engine"
	"deliveryhub/internal/handlers"
	"deliveryhub/internal/middleware"
	"deliveryhub/internal/realtime"
	"deliveryhub/internal/store"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("⚠️ order index warning: %v", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("⚠️ user index warning: %v", err)
	}
	if err := database.EnsureAuditIndexes(db); err != nil {
		log.Printf("⚠️ audit index warning: %v", err)
	}

	hub := realtime.NewHub()
	eng := engine.New(store.NewMongo(db), realtime.NewDispatcher(hub, db))

	go func() {
		if err := realtime.WatchOrders(context.Background(), db, hub); err != nil {
			log.Printf("⚠️ order change stream unavailable: %v", err)
		}
	}()

	r := gin.Default()

	r.GET("/ws", hub.Handle())

	r.POST("/orders", handlers.CreateOrder(eng, db))
	r.POST("/orders/special", handlers.CreateSpecialRequest(eng, db))
	r.GET("/orders", handlers.GetOrders(eng))
	r.GET("/orders/:id", handlers.GetOrder(eng))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.POST("/orders/:id/status", handlers.TransitionOrder(eng))
		admin.POST("/orders/:id/assign", handlers.AssignDriver(eng))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(eng))

		admin.GET("/orders/bulk/preview", handlers.PreviewBulk(eng))
		admin.POST("/orders/bulk/assign", handlers.BulkAssign(eng))
		admin.POST("/orders/bulk/status", handlers.BulkStatusUpdate(eng))
		admin.POST("/orders/bulk/delete", handlers.BulkDelete(eng))

		admin.GET("/audit", handlers.GetAuditLog(eng))
		admin.POST("/audit/:id/undo", handlers.UndoAuditEntry(eng))
		admin.DELETE("/audit", handlers.ClearAuditLog(eng))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
