// Package orders implements order placement and management: cart aggregation
// into a single order record, incremental order ID assignment, status updates
// and queue notifications.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/internal/tablestore"
	"github.com/abcretail/storefront/pkg/models"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrProductNotFound = errors.New("selected product not found")
)

// Notifier publishes order lifecycle messages to the queue. Failures are
// logged and swallowed: a persisted order always wins over a lost message.
type Notifier interface {
	PublishOrderCreated(order *models.Order) error
	PublishText(message string) error
}

// Broadcaster pushes order events to connected dashboard clients.
type Broadcaster interface {
	Broadcast(messageType string, data interface{}, source string)
}

type Service struct {
	store    tablestore.Store
	notifier Notifier
	hub      Broadcaster
	logger   *logrus.Logger
}

func NewService(store tablestore.Store, notifier Notifier, logger *logrus.Logger) *Service {
	return &Service{store: store, notifier: notifier, logger: logger}
}

func (s *Service) SetBroadcaster(hub Broadcaster) {
	s.hub = hub
}

// PlaceOrder converts the session cart into exactly one order: product IDs of
// resolved lines comma-joined, quantities summed over every line, total equal
// to the cart subtotal at this moment. Prices are not re-checked afterwards.
//
// The order ID comes from a scan over all existing orders. Two requests
// placing orders at the same time can pick the same ID; see the caveat on
// tablestore.NextID.
func (s *Service) PlaceOrder(ctx context.Context, customer *models.Customer, items []models.CartItem) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	customerID, err := strconv.Atoi(customer.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("customer %q has a non-numeric identifier", customer.CustomerID)
	}

	catalog, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	var (
		total      float64
		quantity   int
		productIDs []string
	)
	for _, item := range items {
		quantity += item.Quantity
		for _, product := range catalog {
			if product.ProductID == item.ProductID {
				total += product.Price * float64(item.Quantity)
				productIDs = append(productIDs, product.ProductID)
				break
			}
		}
	}

	nextID, err := tablestore.NextOrderID(ctx, s.store)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderID:      nextID,
		PartitionKey: models.OrdersPartition,
		RowKey:       uuid.New().String(),
		CustomerID:   customerID,
		ProductID:    strings.Join(productIDs, ","),
		Quantity:     quantity,
		OrderTotal:   total,
		OrderStatus:  "Pending",
		OrderDate:    time.Now().UTC(),
		DeliveryDate: time.Now().UTC().Add(24 * time.Hour),
	}

	if err := s.store.UpsertOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    order.OrderID,
		"customer_id": order.CustomerID,
		"order_total": order.OrderTotal,
		"quantity":    order.Quantity,
	}).Info("Order placed")

	s.notifyCreated(order)
	return order, nil
}

// CreateOrder is the admin path: one product, explicit quantity. The product
// must exist; quantity is clamped to at least 1.
func (s *Service) CreateOrder(ctx context.Context, order *models.Order, quantity int) error {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return err
	}

	var selected *models.Product
	for i := range products {
		if products[i].ProductID == order.ProductID {
			selected = &products[i]
			break
		}
	}
	if selected == nil {
		return ErrProductNotFound
	}

	if quantity < 1 {
		quantity = 1
	}
	order.Quantity = quantity
	order.OrderTotal = selected.Price * float64(quantity)
	order.PartitionKey = models.OrdersPartition
	order.RowKey = uuid.New().String()

	nextID, err := tablestore.NextOrderID(ctx, s.store)
	if err != nil {
		return err
	}
	order.OrderID = nextID

	if order.OrderStatus == "" {
		order.OrderStatus = "Pending"
	}
	order.OrderDate = time.Now().UTC()
	if order.DeliveryDate.IsZero() {
		order.DeliveryDate = time.Now().UTC().Add(24 * time.Hour)
	}

	if err := s.store.UpsertOrder(ctx, order); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":    order.OrderID,
		"customer_id": order.CustomerID,
		"order_total": order.OrderTotal,
	}).Info("Order created")

	s.notifyCreated(order)
	if s.notifier != nil {
		message := fmt.Sprintf("New Order Created: ID=%d, Customer=%d, Product=%s, Quantity=%d, Total=%.2f, Status=%s",
			order.OrderID, order.CustomerID, order.ProductID, order.Quantity, order.OrderTotal, order.OrderStatus)
		if err := s.notifier.PublishText(message); err != nil {
			s.logger.WithError(err).Error("Failed to publish order message")
		}
	}
	return nil
}

func (s *Service) notifyCreated(order *models.Order) {
	if s.notifier != nil {
		if err := s.notifier.PublishOrderCreated(order); err != nil {
			s.logger.WithError(err).WithField("order_id", order.OrderID).Error("Failed to publish order notification")
		}
	}
	if s.hub != nil {
		s.hub.Broadcast("order_created", order, "storefront")
	}
}

// List returns all orders newest first, optionally filtered by a search term
// matched against the order ID, customer ID, or any product name inside
// multi-product orders.
func (s *Service) List(ctx context.Context, search string) ([]models.Order, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	search = strings.TrimSpace(search)
	if search != "" {
		products, err := s.store.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		names := make(map[string]string, len(products))
		for _, p := range products {
			if p.ProductID != "" && p.Name != "" {
				names[p.ProductID] = p.Name
			}
		}

		lowered := strings.ToLower(search)
		filtered := orders[:0]
		for _, o := range orders {
			if orderMatches(o, lowered, names) {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].OrderID > orders[j].OrderID
	})
	return orders, nil
}

func orderMatches(o models.Order, search string, productNames map[string]string) bool {
	if strings.Contains(strconv.Itoa(o.OrderID), search) {
		return true
	}
	if strings.Contains(strconv.Itoa(o.CustomerID), search) {
		return true
	}
	for _, pid := range strings.Split(o.ProductID, ",") {
		pid = strings.TrimSpace(pid)
		if pid == "" {
			continue
		}
		if name, ok := productNames[pid]; ok &&
			strings.Contains(strings.ToLower(name), search) {
			return true
		}
	}
	return false
}

// UpdateStatus sets a new free-text status on the order.
func (s *Service) UpdateStatus(ctx context.Context, partitionKey, rowKey, newStatus string) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, partitionKey, rowKey)
	if err != nil {
		return nil, err
	}
	order.OrderStatus = newStatus
	if err := s.store.UpsertOrder(ctx, order); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		message := fmt.Sprintf("Order %d status updated to %s.", order.OrderID, newStatus)
		if err := s.notifier.PublishText(message); err != nil {
			s.logger.WithError(err).Error("Failed to publish status message")
		}
	}
	return order, nil
}

// Delete removes the order and logs a deletion message to the queue.
func (s *Service) Delete(ctx context.Context, partitionKey, rowKey string) error {
	order, err := s.store.GetOrder(ctx, partitionKey, rowKey)
	if err != nil {
		return err
	}
	if err := s.store.DeleteOrder(ctx, partitionKey, rowKey); err != nil {
		return err
	}

	if s.notifier != nil {
		message := fmt.Sprintf("Order Deleted: ID=%d, Customer=%d, Product=%s",
			order.OrderID, order.CustomerID, order.ProductID)
		if err := s.notifier.PublishText(message); err != nil {
			s.logger.WithError(err).Error("Failed to publish deletion message")
		}
	}
	return nil
}
