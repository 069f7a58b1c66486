package main

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/internal/blobstore"
	"github.com/abcretail/storefront/internal/events"
	"github.com/abcretail/storefront/internal/files"
	"github.com/abcretail/storefront/internal/filestore"
	"github.com/abcretail/storefront/internal/products"
	"github.com/abcretail/storefront/internal/tablestore"
	"github.com/abcretail/storefront/pkg/models"
)

// recentMessages keeps the last few queue payloads in memory so the GET
// endpoint can show what was published without a consumer.
type recentMessages struct {
	mu       sync.RWMutex
	messages []string
}

func (r *recentMessages) add(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	if len(r.messages) > 50 {
		r.messages = r.messages[len(r.messages)-50:]
	}
}

func (r *recentMessages) list() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}

type functionApp struct {
	tables   tablestore.Store
	share    filestore.Store
	catalog  *products.Service
	producer *events.Producer
	recent   *recentMessages
	logger   *logrus.Logger
}

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

	// Service configuration
	port := getEnv("FUNCTIONS_PORT", "8083")
	baseURL := getEnv("FUNCTIONS_BASE_URL", "http://localhost:"+port)
	functionKey := getEnv("FUNCTIONS_KEY", "")

	// Connect to database
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		if err := db.Ping(); err == nil {
			logger.Info("Database connection established")
			break
		}
		logger.Info("Waiting for database...")
		time.Sleep(2 * time.Second)
	}

	ctx := context.Background()

	tables := tablestore.NewClient(db, logger)
	if err := tables.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to create entities table")
	}
	blobs := blobstore.NewClient(db, baseURL)
	if err := blobs.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to create blobs table")
	}
	share := filestore.NewClient(db)
	if err := share.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to create files table")
	}

	producer, err := events.NewProducer(kafkaBrokers, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Kafka producer")
	}
	defer producer.Close()

	app := &functionApp{
		tables:   tables,
		share:    share,
		catalog:  products.NewService(tables, blobs, logger),
		producer: producer,
		recent:   &recentMessages{},
		logger:   logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", app.healthCheck).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	if functionKey != "" {
		api.Use(requireFunctionKey(functionKey, logger))
	}
	api.HandleFunc("/customers/add", app.listCustomers).Methods("GET")
	api.HandleFunc("/customers/add", app.addCustomer).Methods("POST")
	api.HandleFunc("/orders/send", app.listMessages).Methods("GET")
	api.HandleFunc("/orders/send", app.sendOrder).Methods("POST")
	api.HandleFunc("/files/upload", app.listFiles).Methods("GET")
	api.HandleFunc("/files/upload", app.uploadFile).Methods("POST")
	api.HandleFunc("/products/upload", app.uploadProduct).Methods("POST")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", port).Info("Starting function app")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down function app...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HTTP server forced to shutdown")
	}

	logger.Info("Function app gracefully stopped")
}

func (a *functionApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "functions",
	})
}

func (a *functionApp) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := a.tables.ListCustomers(r.Context())
	if err != nil {
		a.logger.WithError(err).Error("Failed to list customers")
		respondWithError(w, http.StatusInternalServerError, "Failed to get customers")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"customers": customers,
		"count":     len(customers),
	})
}

func (a *functionApp) addCustomer(w http.ResponseWriter, r *http.Request) {
	var customer models.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if customer.FirstName == "" || customer.LastName == "" {
		respondWithError(w, http.StatusBadRequest, "First name and last name are required.")
		return
	}

	if customer.CustomerID == "" {
		nextID, err := tablestore.NextCustomerID(r.Context(), a.tables)
		if err != nil {
			a.logger.WithError(err).Error("Failed to assign customer ID")
			respondWithError(w, http.StatusInternalServerError, "Failed to add customer")
			return
		}
		customer.CustomerID = strconv.Itoa(nextID)
	}

	if err := a.tables.UpsertCustomer(r.Context(), &customer); err != nil {
		a.logger.WithError(err).Error("Failed to add customer")
		respondWithError(w, http.StatusInternalServerError, "Failed to add customer")
		return
	}

	a.logger.WithField("customer_id", customer.CustomerID).Info("Customer added")
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"message":  "Customer added successfully",
		"customer": customer,
	})
}

func (a *functionApp) listMessages(w http.ResponseWriter, r *http.Request) {
	messages := a.recent.list()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"messages": messages,
		"count":    len(messages),
	})
}

// sendOrder publishes the order notification to the queue. The storefront
// calls this after it has already persisted the order, so a publish failure
// here is reported but nothing is rolled back.
func (a *functionApp) sendOrder(w http.ResponseWriter, r *http.Request) {
	var order models.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	message := fmt.Sprintf("New Order Created: ID=%d, Customer=%d, Product=%s, Quantity=%d, Total=%.2f, Status=%s",
		order.OrderID, order.CustomerID, order.ProductID, order.Quantity, order.OrderTotal, order.OrderStatus)

	if err := a.producer.PublishText(message); err != nil {
		a.logger.WithError(err).WithField("order_id", order.OrderID).Error("Failed to publish order message")
		respondWithError(w, http.StatusInternalServerError, "Failed to publish order message")
		return
	}
	a.recent.add(message)

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
	})
}

func (a *functionApp) listFiles(w http.ResponseWriter, r *http.Request) {
	listed, err := a.share.List(r.Context(), files.UploadsDirectory)
	if err != nil {
		a.logger.WithError(err).Error("Failed to list files")
		respondWithError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}
	if listed == nil {
		listed = []models.FileInfo{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"Files":   listed,
	})
}

func (a *functionApp) uploadFile(w http.ResponseWriter, r *http.Request) {
	var req models.FileUpload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FileName == "" || req.FileContent == "" {
		respondWithError(w, http.StatusBadRequest, "FileName and FileContent are required.")
		return
	}
	content, err := base64.StdEncoding.DecodeString(req.FileContent)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "FileContent must be base64 encoded.")
		return
	}

	if err := a.share.Upload(r.Context(), files.UploadsDirectory, req.FileName, content); err != nil {
		a.logger.WithError(err).Error("Failed to upload file")
		respondWithError(w, http.StatusInternalServerError, "Error uploading file")
		return
	}

	a.logger.WithField("file_name", req.FileName).Info("File uploaded")
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("File '%s' uploaded successfully.", req.FileName),
	})
}

func (a *functionApp) uploadProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductUpload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Product name is required.")
		return
	}
	if req.Price < 0 || req.Quantity < 0 {
		respondWithError(w, http.StatusBadRequest, "Price and quantity must be non-negative.")
		return
	}

	var image []byte
	if req.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid image encoding")
			return
		}
		image = decoded
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
	if err := a.catalog.Add(r.Context(), product, "image", image, "application/octet-stream"); err != nil {
		a.logger.WithError(err).Error("Failed to upload product")
		respondWithError(w, http.StatusInternalServerError, "An error occurred while saving the product.")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Product added successfully",
		"product": product,
	})
}

func requireFunctionKey(key string, logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("x-functions-key") != key {
				logger.WithField("path", r.URL.Path).Warn("Rejected request with missing or wrong function key")
				respondWithError(w, http.StatusUnauthorized, "Invalid function key.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
