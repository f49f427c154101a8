package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kenlin2709/va/models"
)

// ReferralsAPI resolves referral codes to their discount terms.
type ReferralsAPI interface {
	Validate(ctx context.Context, code string) (*models.Referral, error)
}

type referralsClient struct {
	api *APIClient
}

func NewReferralsClient(api *APIClient) ReferralsAPI {
	return &referralsClient{api: api}
}

func (c *referralsClient) Validate(ctx context.Context, code string) (*models.Referral, error) {
	var res models.Referral
	if err := c.api.Do(ctx, http.MethodGet, "/referrals/validate/"+url.PathEscape(code), "", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
