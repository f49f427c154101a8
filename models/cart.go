package models

// CartLine is a single row of the cart. ID is the stable product identifier;
// at most one line exists per ID.
type CartLine struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
	Qty      int     `json:"qty"`
}

// CartSummary is the derived view of a cart returned to the client.
// Count and Subtotal are recomputed from the lines on every read.
type CartSummary struct {
	Lines    []CartLine `json:"items"`
	Count    int        `json:"count"`
	Subtotal float64    `json:"subtotal"`
	Open     bool       `json:"open"`
}

// CartCount sums line quantities.
func CartCount(lines []CartLine) int {
	total := 0
	for _, l := range lines {
		total += l.Qty
	}
	return total
}

// CartSubtotal sums qty * price over the lines.
func CartSubtotal(lines []CartLine) float64 {
	total := 0.0
	for _, l := range lines {
		total += float64(l.Qty) * l.Price
	}
	return total
}
