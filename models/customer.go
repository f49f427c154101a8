package models

// ShippingAddress mirrors the address block stored on the customer record.
type ShippingAddress struct {
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address1 string `json:"address1,omitempty"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Postcode string `json:"postcode,omitempty"`
	Country  string `json:"country,omitempty"`
}

// Customer is the identity record owned by the auth backend.
type Customer struct {
	ID              string           `json:"_id"`
	Email           string           `json:"email"`
	IsAdmin         bool             `json:"isAdmin,omitempty"`
	FirstName       string           `json:"firstName,omitempty"`
	LastName        string           `json:"lastName,omitempty"`
	Phone           string           `json:"phone,omitempty"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
	CreatedAt       string           `json:"createdAt,omitempty"`
	UpdatedAt       string           `json:"updatedAt,omitempty"`
}

// RegisterRequest is the payload sent to the auth backend when creating an
// account. VerificationToken is required for inline checkout registration.
type RegisterRequest struct {
	Email             string           `json:"email"`
	Password          string           `json:"password"`
	VerificationToken string           `json:"verificationToken,omitempty"`
	FirstName         string           `json:"firstName,omitempty"`
	LastName          string           `json:"lastName,omitempty"`
	Phone             string           `json:"phone,omitempty"`
	ShippingAddress   *ShippingAddress `json:"shippingAddress,omitempty"`
}

// UpdateProfileRequest is the partial profile update payload.
type UpdateProfileRequest struct {
	FirstName       string           `json:"firstName,omitempty"`
	LastName        string           `json:"lastName,omitempty"`
	Phone           string           `json:"phone,omitempty"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
}

// AuthResponse is returned by the auth backend on login or registration.
type AuthResponse struct {
	Customer    *Customer `json:"customer"`
	AccessToken string    `json:"accessToken"`
}
