package models

// Coupon is a fixed-amount voucher issued to a single customer. Read-only
// from checkout's perspective; selection state lives in the checkout session.
type Coupon struct {
	ID            string  `json:"_id"`
	Code          string  `json:"code"`
	CustomerID    string  `json:"customerId"`
	CustomerEmail string  `json:"customerEmail,omitempty"`
	Value         float64 `json:"value"`
	IsUsed        bool    `json:"isUsed"`
	UsedInOrderID string  `json:"usedInOrderId,omitempty"`
	ExpiryDate    string  `json:"expiryDate,omitempty"`
	Description   string  `json:"description,omitempty"`
	Active        bool    `json:"active"`
}

// DiscountType distinguishes the two referral discount mechanisms.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

// Referral is a resolved referral code as returned by the referrals backend.
type Referral struct {
	ID            string       `json:"_id"`
	Name          string       `json:"name"`
	DiscountType  DiscountType `json:"discountType"`
	DiscountValue float64      `json:"discountValue"`
	Active        bool         `json:"active"`
}
