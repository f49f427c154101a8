package services

import "github.com/kenlin2709/va/models"

// MaxCoupons is the most coupons a single order may stack.
const MaxCoupons = 3

// CouponDiscount walks the selected coupons in selection order. Each coupon
// contributes min(remaining subtotal, coupon value); once the remaining
// subtotal hits zero, later coupons contribute nothing. The result never
// exceeds the subtotal.
func CouponDiscount(subtotal float64, coupons []models.Coupon) float64 {
	discount := 0.0
	for _, c := range coupons {
		remaining := subtotal - discount
		if remaining <= 0 {
			break
		}
		if c.Value < remaining {
			discount += c.Value
		} else {
			discount += remaining
		}
	}
	return discount
}

// ReferralDiscount resolves a referral's discount against the subtotal.
// Percent discounts apply to the subtotal; amount discounts are taken as-is.
// Either way the result is clamped to [0, subtotal].
func ReferralDiscount(subtotal float64, kind models.DiscountType, value float64) float64 {
	var discount float64
	switch kind {
	case models.DiscountPercent:
		discount = subtotal * value / 100
	case models.DiscountAmount:
		discount = value
	default:
		return 0
	}
	if discount < 0 {
		return 0
	}
	if discount > subtotal {
		return subtotal
	}
	return discount
}

// OrderTotal is the payable total after discount, floored at zero.
func OrderTotal(subtotal, discount float64) float64 {
	total := subtotal - discount
	if total < 0 {
		return 0
	}
	return total
}
