package models

// VerificationStep is the guest email-verification wizard position.
type VerificationStep string

const (
	StepEmail  VerificationStep = "email"
	StepVerify VerificationStep = "verify"
	StepReady  VerificationStep = "ready"
)

// ShippingForm is the checkout form as submitted by the storefront.
// Email and Password only matter on the guest path; both are ignored for
// authenticated customers.
type ShippingForm struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Country   string `json:"country"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Phone     string `json:"phone"`
}

// CheckoutState is the snapshot the storefront renders the checkout from.
// Totals are locally computed previews; the created order carries the
// authoritative figures.
type CheckoutState struct {
	Step             VerificationStep `json:"step"`
	Email            string           `json:"email"`
	Cooldown         int              `json:"cooldown"`
	EmailRegistered  bool             `json:"emailRegistered"`
	Submitting       bool             `json:"submitting"`
	Authenticated    bool             `json:"authenticated"`
	SelectedCoupons  []string         `json:"selectedCoupons"`
	Subtotal         float64          `json:"subtotal"`
	Discount         float64          `json:"discount"`
	Total            float64          `json:"total"`
}
