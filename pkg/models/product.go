package models

// Product is a catalog entry. Price and Quantity are validated non-negative at
// the HTTP boundary. ImageUrl points at the blob serving route when an image
// was uploaded alongside the product.
type Product struct {
	PartitionKey string  `json:"PartitionKey"`
	RowKey       string  `json:"RowKey"`
	ProductID    string  `json:"ProductID"`
	Name         string  `json:"Name"`
	Description  string  `json:"Description,omitempty"`
	Price        float64 `json:"Price"`
	Quantity     int     `json:"Quantity"`
	ImageUrl     string  `json:"ImageUrl,omitempty"`
}

const ProductsPartition = "ProductsPartition"

// ProductUpload is the payload accepted by the functions app: product details
// plus an optional base64-encoded image to be placed in blob storage.
type ProductUpload struct {
	Name        string  `json:"Name"`
	Description string  `json:"Description,omitempty"`
	Price       float64 `json:"Price"`
	Quantity    int     `json:"Quantity"`
	ImageBase64 string  `json:"ImageBase64,omitempty"`
}
