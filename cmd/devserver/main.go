package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"storechat/internal/config"
	"storechat/internal/db"
	"storechat/internal/handlers"
	"storechat/internal/middleware"
	"storechat/internal/observability"
	"storechat/internal/rabbitmq"
	"storechat/internal/repositories"
	"storechat/internal/telemetry"
	"storechat/internal/ws"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := telemetry.InitTracing(ctx, cfg.OTLPEndpoint, cfg.Environment)
		if err != nil {
			log.Printf("tracing disabled: %v", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("event publisher mode: %s", rabbitmq.Mode(publisher))
	observability.SetPublisher(publisher)

	audit := telemetry.NewAuditEmitter(publisher, "audit.storefront", cfg.Environment)

	userRepo := repositories.NewUserRepo(database)
	productRepo := repositories.NewProductRepo(database)
	cartRepo := repositories.NewCartRepo(database)
	conversationRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	sessions := middleware.NewMemorySessionStore()
	hub := ws.NewHub()

	userHandler := handlers.NewUserHandler(userRepo, sessions, audit)
	productHandler := handlers.NewProductHandler(productRepo, cartRepo)
	cartHandler := handlers.NewCartHandler(cartRepo)
	channelHandler := ws.NewChannelHandler(hub, sessions, userRepo, productRepo, conversationRepo, messageRepo)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("storefront-devserver"))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	authRequired := middleware.AuthMiddleware(sessions)

	router.POST("/users/register", userHandler.Register)
	router.POST("/users/login", userHandler.Login)
	router.POST("/users/verify", userHandler.Verify)
	router.POST("/users/logout", userHandler.Logout)

	router.GET("/products/showCategories", productHandler.ShowCategories)
	router.POST("/products/showProduct", productHandler.ShowProduct)
	router.GET("/products/showUserProducts", authRequired, productHandler.ShowUserProducts)
	router.POST("/products/create", authRequired, productHandler.Create)
	router.POST("/products/update", authRequired, productHandler.Update)
	router.POST("/products/delete", authRequired, productHandler.Delete)
	router.POST("/products/alterProductToCart", authRequired, productHandler.AlterProductToCart)

	router.GET("/cart/showUserProducts", authRequired, cartHandler.ShowUserProducts)
	router.POST("/cart/deleteProduct", authRequired, cartHandler.DeleteProduct)
	router.POST("/cart/checkout", authRequired, cartHandler.Checkout)
	router.GET("/purchases/showPurchasedProducts", authRequired, cartHandler.ShowPurchasedProducts)

	router.GET("/ws", channelHandler.Handle)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
