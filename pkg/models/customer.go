package models

// Customer mirrors the table storage record created on registration.
// CustomerID is a numeric-looking string and never changes once assigned.
type Customer struct {
	CustomerID   string `json:"CustomerID"`
	FirstName    string `json:"FirstName"`
	LastName     string `json:"LastName"`
	Email        string `json:"Email"`
	Phone        string `json:"Phone"`
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
}

const CustomersPartition = "CustomersPartition"
