package models

import (
	"time"
)

// Order is a single storage record aggregating every line of a placed cart.
// Multi-product orders carry all product IDs comma-joined in productID and the
// summed quantity, matching how downstream consumers expect the payload.
type Order struct {
	OrderID         int       `json:"orderID"`
	PartitionKey    string    `json:"PartitionKey"`
	RowKey          string    `json:"RowKey"`
	CustomerID      int       `json:"customerID"`
	ProductID       string    `json:"productID"`
	Quantity        int       `json:"quantity"`
	OrderTotal      float64   `json:"orderTotal"`
	OrderStatus     string    `json:"orderStatus"`
	DeliveryDate    time.Time `json:"deliveryDate"`
	DeliveryAddress string    `json:"deliveryAddress"`
	OrderDate       time.Time `json:"orderDate"`
}

const OrdersPartition = "OrdersPartition"

type OrderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   *Order `json:"order,omitempty"`
}
