package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kenlin2709/va/models"
)

// CouponValidation is the trimmed coupon view returned by the validate
// endpoint.
type CouponValidation struct {
	Code        string  `json:"code"`
	Value       float64 `json:"value"`
	Description string  `json:"description,omitempty"`
}

// CouponsAPI is the coupon collaborator. Validation happens upstream; the
// checkout never recomputes coupon eligibility locally.
type CouponsAPI interface {
	ListMine(ctx context.Context, token string) ([]models.Coupon, error)
	Validate(ctx context.Context, code string) (*CouponValidation, error)
}

type couponsClient struct {
	api *APIClient
}

func NewCouponsClient(api *APIClient) CouponsAPI {
	return &couponsClient{api: api}
}

func (c *couponsClient) ListMine(ctx context.Context, token string) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := c.api.Do(ctx, http.MethodGet, "/coupons/my", token, nil, nil, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

func (c *couponsClient) Validate(ctx context.Context, code string) (*CouponValidation, error) {
	var res CouponValidation
	if err := c.api.Do(ctx, http.MethodGet, "/coupons/validate/"+url.PathEscape(code), "", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
