package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/internal/events"
)

// notificationLogger prints every queue message to the log. Order creations
// arrive as full order JSON, status updates and deletions as plain text.
type notificationLogger struct {
	logger *logrus.Logger
}

func (h *notificationLogger) HandleNotification(key, value []byte) error {
	var notification events.OrderNotification
	if err := json.Unmarshal(value, &notification); err == nil && notification.Order != nil {
		h.logger.WithFields(logrus.Fields{
			"order_id":    notification.Order.OrderID,
			"customer_id": notification.Order.CustomerID,
			"order_total": notification.Order.OrderTotal,
			"status":      notification.Order.OrderStatus,
		}).Info("Order notification received")

		fmt.Printf("\n=== Order Notification ===\n")
		fmt.Printf("Time: %s\n", time.Now().Format(time.RFC3339))
		fmt.Printf("Order ID: %d\n", notification.Order.OrderID)
		fmt.Printf("Customer: %d\n", notification.Order.CustomerID)
		fmt.Printf("Total: %.2f\n", notification.Order.OrderTotal)
		fmt.Printf("==========================\n\n")
		return nil
	}

	h.logger.WithFields(logrus.Fields{
		"key":     string(key),
		"message": string(value),
	}).Info("Queue message received")
	return nil
}

func main() {
	godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	kafkaBrokers := getEnv("KAFKA_BROKERS", "localhost:9092")

	var consumer *events.Consumer
	var err error

	// Kafka may still be starting when the monitor comes up.
	for i := 0; i < 10; i++ {
		consumer, err = events.NewConsumer(kafkaBrokers, "queue-monitor-group", &notificationLogger{logger: logger}, logger)
		if err == nil {
			logger.Info("Successfully connected to Kafka")
			break
		}
		logger.WithError(err).WithField("attempt", i+1).Warn("Failed to connect to Kafka, retrying...")
		time.Sleep(5 * time.Second)
	}
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Kafka consumer after retries")
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.WithError(err).Error("Kafka consumer error")
		}
	}()

	logger.WithField("topic", events.OrderNotificationsTopic).Info("Queue monitor started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down queue monitor...")
	cancel()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
