// Package cart holds the session cart and its aggregation logic. The cart is
// a per-session list of (productID, quantity) pairs; it is never persisted to
// table storage and is cleared when an order is placed.
package cart

import (
	"github.com/abcretail/storefront/pkg/models"
)

// Add increments the quantity of an existing line or appends a new line with
// quantity 1, and returns the updated items.
func Add(items []models.CartItem, productID string) []models.CartItem {
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity++
			return items
		}
	}
	return append(items, models.CartItem{ProductID: productID, Quantity: 1})
}

// Remove drops the line for productID, if present.
func Remove(items []models.CartItem, productID string) []models.CartItem {
	for i := range items {
		if items[i].ProductID == productID {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

// Summarize joins cart items against the catalog. Each item resolves to the
// first product with a matching ProductID (case-sensitive); items referencing
// an unknown product become zero-price lines with an empty name rather than
// failing. The subtotal is the sum of line totals.
func Summarize(items []models.CartItem, catalog []models.Product) models.CartSummary {
	summary := models.CartSummary{Lines: make([]models.CartLine, 0, len(items))}
	for _, item := range items {
		line := models.CartLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		for _, product := range catalog {
			if product.ProductID == item.ProductID {
				line.Name = product.Name
				line.Price = product.Price
				break
			}
		}
		line.Total = line.Price * float64(item.Quantity)
		summary.Lines = append(summary.Lines, line)
		summary.Subtotal += line.Total
	}
	return summary
}
