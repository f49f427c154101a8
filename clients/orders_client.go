package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kenlin2709/va/models"
)

// OrdersAPI is the order-creation and order-history collaborator.
type OrdersAPI interface {
	Create(ctx context.Context, token string, req models.CreateOrderRequest) (*models.Order, error)
	ListMine(ctx context.Context, token string) ([]models.Order, error)
	GetMine(ctx context.Context, token, id string) (*models.Order, error)
}

type ordersClient struct {
	api *APIClient
}

func NewOrdersClient(api *APIClient) OrdersAPI {
	return &ordersClient{api: api}
}

func (c *ordersClient) Create(ctx context.Context, token string, req models.CreateOrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.api.Do(ctx, http.MethodPost, "/orders", token, nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *ordersClient) ListMine(ctx context.Context, token string) ([]models.Order, error) {
	var orders []models.Order
	if err := c.api.Do(ctx, http.MethodGet, "/orders/my", token, nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *ordersClient) GetMine(ctx context.Context, token, id string) (*models.Order, error) {
	var order models.Order
	if err := c.api.Do(ctx, http.MethodGet, "/orders/my/"+url.PathEscape(id), token, nil, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
