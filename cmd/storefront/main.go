package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/internal/auth"
	"github.com/abcretail/storefront/internal/blobstore"
	"github.com/abcretail/storefront/internal/cart"
	"github.com/abcretail/storefront/internal/customers"
	"github.com/abcretail/storefront/internal/events"
	"github.com/abcretail/storefront/internal/files"
	"github.com/abcretail/storefront/internal/filestore"
	"github.com/abcretail/storefront/internal/functions"
	"github.com/abcretail/storefront/internal/orders"
	"github.com/abcretail/storefront/internal/products"
	"github.com/abcretail/storefront/internal/session"
	"github.com/abcretail/storefront/internal/tablestore"
	"github.com/abcretail/storefront/internal/websocket"
)

func main() {
	godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	// Database configuration
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "storefront")
	dbPassword := getEnv("DB_PASSWORD", "storefront")
	dbName := getEnv("DB_NAME", "storefront")

	// Kafka configuration
	kafkaBrokers := getEnv("KAFKA_BROKERS", "localhost:9092")

	// Redis configuration
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")

	// Service configuration
	port := getEnv("STOREFRONT_PORT", "8080")
	baseURL := getEnv("STOREFRONT_BASE_URL", "http://localhost:"+port)
	jwtSecret := []byte(getEnv("JWT_SECRET", "dev-secret-change-me"))
	functionsURL := getEnv("FUNCTIONS_URL", "")
	functionsKey := getEnv("FUNCTIONS_KEY", "")

	// Connect to database
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Wait for database to be ready
	for i := 0; i < 30; i++ {
		if err := db.Ping(); err == nil {
			logger.Info("Database connection established")
			break
		}
		logger.Info("Waiting for database...")
		time.Sleep(2 * time.Second)
	}

	ctx := context.Background()

	// Table storage
	tables := tablestore.NewClient(db, logger)
	if err := tables.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to create entities table")
	}
	if err := tablestore.Seed(ctx, tables, logger); err != nil {
		logger.WithError(err).Fatal("Failed to seed default records")
	}

	// Blob and file storage
	blobs := blobstore.NewClient(db, baseURL)
	if err := blobs.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to create blobs table")
	}
	fileShare := filestore.NewClient(db)
	if err := fileShare.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to create files table")
	}

	// User accounts
	users := auth.NewPostgresUsers(db)
	if err := users.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to create users table")
	}

	// Sessions in Redis
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()
	sessions := session.NewRedisStore(redisClient)
	carts := cart.NewStore(sessions)

	// Queue producer
	producer, err := events.NewProducer(kafkaBrokers, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Kafka producer")
	}
	defer producer.Close()

	// Dashboard WebSocket hub
	hub := websocket.NewHub(logger)
	go hub.Run()

	// Services
	orderService := orders.NewService(tables, producer, logger)
	orderService.SetBroadcaster(hub)
	customerService := customers.NewService(tables, logger)
	productService := products.NewService(tables, blobs, logger)
	authService := auth.NewService(users, tables, jwtSecret, logger)

	// Handlers
	orderHandler := orders.NewHandler(orderService, tables, carts, sessions, logger)
	if functionsURL != "" {
		orderHandler.SetFunctionsClient(functions.NewClient(functionsURL, functionsKey, logger))
		logger.WithField("url", functionsURL).Info("Function app forwarding enabled")
	}
	customerHandler := customers.NewHandler(customerService, logger)
	productHandler := products.NewHandler(productService, blobs, logger)
	cartHandler := cart.NewHandler(carts, tables, logger)
	fileHandler := files.NewHandler(fileShare, logger)
	authHandler := auth.NewHandler(authService, carts, logger)

	// Set up routes
	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))

	router.HandleFunc("/health", healthCheck(db, hub)).Methods("GET")
	router.HandleFunc("/ws", hub.HandleWebSocket)
	router.HandleFunc("/images/{name}", productHandler.ServeImage).Methods("GET")

	// Public endpoints
	router.HandleFunc("/api/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/api/login", authHandler.Login).Methods("POST")
	router.HandleFunc("/api/products", productHandler.ListProducts).Methods("GET")
	router.HandleFunc("/api/products/detail", productHandler.GetProduct).Methods("GET")

	// Authenticated endpoints
	authed := router.NewRoute().Subrouter()
	authed.Use(auth.RequireAuth(jwtSecret))
	authed.HandleFunc("/api/logout", authHandler.Logout).Methods("POST")
	authed.HandleFunc("/api/cart", cartHandler.ViewCart).Methods("GET")
	authed.HandleFunc("/api/cart/add", cartHandler.AddToCart).Methods("POST")
	authed.HandleFunc("/api/cart/remove", cartHandler.RemoveFromCart).Methods("POST")
	authed.HandleFunc("/api/cart/checkout", orderHandler.Checkout).Methods("POST")
	authed.HandleFunc("/api/cart/receipt", orderHandler.Receipt).Methods("GET")

	// Admin endpoints
	admin := router.NewRoute().Subrouter()
	admin.Use(auth.RequireAuth(jwtSecret), auth.RequireAdmin())
	admin.HandleFunc("/api/customers", customerHandler.ListCustomers).Methods("GET")
	admin.HandleFunc("/api/customers", customerHandler.AddCustomer).Methods("POST")
	admin.HandleFunc("/api/customers", customerHandler.UpdateCustomer).Methods("PUT")
	admin.HandleFunc("/api/customers", customerHandler.DeleteCustomer).Methods("DELETE")
	admin.HandleFunc("/api/customers/detail", customerHandler.GetCustomer).Methods("GET")
	admin.HandleFunc("/api/products", productHandler.AddProduct).Methods("POST")
	admin.HandleFunc("/api/products", productHandler.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/api/products", productHandler.DeleteProduct).Methods("DELETE")
	admin.HandleFunc("/api/orders", orderHandler.ListOrders).Methods("GET")
	admin.HandleFunc("/api/orders", orderHandler.CreateOrder).Methods("POST")
	admin.HandleFunc("/api/orders", orderHandler.DeleteOrder).Methods("DELETE")
	admin.HandleFunc("/api/orders/detail", orderHandler.GetOrder).Methods("GET")
	admin.HandleFunc("/api/orders/status", orderHandler.UpdateStatus).Methods("PUT")
	admin.HandleFunc("/api/files", fileHandler.ListFiles).Methods("GET")
	admin.HandleFunc("/api/files", fileHandler.UploadFile).Methods("POST")
	admin.HandleFunc("/api/files/{name}", fileHandler.DownloadFile).Methods("GET")
	admin.HandleFunc("/api/files/{name}", fileHandler.DeleteFile).Methods("DELETE")

	// Create server
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.WithField("port", port).Info("Starting storefront")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server gracefully stopped")
}

func healthCheck(db *sql.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":  "unhealthy",
				"service": "storefront",
				"error":   "database connection failed",
			})
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"status":            "healthy",
			"service":           "storefront",
			"dashboard_clients": hub.ClientCount(),
		})
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func loggingMiddleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			logger.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"remote": r.RemoteAddr,
			}).Info("Request received")

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).Milliseconds(),
			}).Info("Request completed")
		})
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
