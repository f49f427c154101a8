package models

// OrderItem is a line on a placed order, denormalized by the orders backend.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// Order is created by a single order-submission call. Its status and total
// are authoritative and overwrite any locally computed figures.
type Order struct {
	ID          string      `json:"_id"`
	CustomerID  string      `json:"customerId"`
	Items       []OrderItem `json:"items"`
	CouponCodes []string    `json:"couponCodes,omitempty"`
	Subtotal    float64     `json:"subtotal"`
	Total       float64     `json:"total"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"createdAt,omitempty"`
	UpdatedAt   string      `json:"updatedAt,omitempty"`
}

// NewOrderItem references a product on order creation.
type NewOrderItem struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// CreateOrderRequest is the payload for the order-creation call.
type CreateOrderRequest struct {
	Items            []NewOrderItem `json:"items"`
	CouponCodes      []string       `json:"couponCodes,omitempty"`
	ShippingName     string         `json:"shippingName"`
	ShippingAddress1 string         `json:"shippingAddress1"`
	ShippingCity     string         `json:"shippingCity"`
	ShippingState    string         `json:"shippingState"`
	ShippingPostcode string         `json:"shippingPostcode"`
}
