package models

// CartItem lives only in the session store. It is never written to table
// storage; placing an order consumes the items and clears the session.
type CartItem struct {
	ProductID string `json:"ProductID"`
	Quantity  int    `json:"Quantity"`
}

// CartLine is one cart item joined against the catalog for display. A cart
// item whose product no longer exists resolves to an empty name and zero
// price rather than an error.
type CartLine struct {
	ProductID string  `json:"ProductID"`
	Name      string  `json:"Name"`
	Price     float64 `json:"Price"`
	Quantity  int     `json:"Quantity"`
	Total     float64 `json:"Total"`
}

type CartSummary struct {
	Lines    []CartLine `json:"lines"`
	Subtotal float64    `json:"subtotal"`
}
