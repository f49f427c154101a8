package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kenlin2709/va/models"
)

// ProductsAPI is the read-only catalog collaborator.
type ProductsAPI interface {
	List(ctx context.Context, query url.Values) (*models.PagedProducts, error)
	Get(ctx context.Context, id string) (*models.Product, error)
}

type productsClient struct {
	api *APIClient
}

func NewProductsClient(api *APIClient) ProductsAPI {
	return &productsClient{api: api}
}

func (c *productsClient) List(ctx context.Context, query url.Values) (*models.PagedProducts, error) {
	var res models.PagedProducts
	if err := c.api.Do(ctx, http.MethodGet, "/products", "", query, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *productsClient) Get(ctx context.Context, id string) (*models.Product, error) {
	var res models.Product
	if err := c.api.Do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), "", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
