package clients

import (
	"context"
	"net/http"

	"github.com/kenlin2709/va/models"
)

// AuthAPI is the identity and verification collaborator.
type AuthAPI interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Me(ctx context.Context, token string) (*models.Customer, error)
	UpdateMe(ctx context.Context, token string, req models.UpdateProfileRequest) (*models.Customer, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SendVerification(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (string, error)
}

type authClient struct {
	api *APIClient
}

func NewAuthClient(api *APIClient) AuthAPI {
	return &authClient{api: api}
}

func (c *authClient) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var res models.AuthResponse
	if err := c.api.Do(ctx, http.MethodPost, "/auth/register", "", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *authClient) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var res models.AuthResponse
	if err := c.api.Do(ctx, http.MethodPost, "/auth/login", "", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *authClient) Me(ctx context.Context, token string) (*models.Customer, error) {
	var res struct {
		Customer *models.Customer `json:"customer"`
	}
	if err := c.api.Do(ctx, http.MethodGet, "/auth/me", token, nil, nil, &res); err != nil {
		return nil, err
	}
	return res.Customer, nil
}

func (c *authClient) UpdateMe(ctx context.Context, token string, req models.UpdateProfileRequest) (*models.Customer, error) {
	var res struct {
		Customer *models.Customer `json:"customer"`
	}
	if err := c.api.Do(ctx, http.MethodPatch, "/auth/me", token, nil, req, &res); err != nil {
		return nil, err
	}
	return res.Customer, nil
}

func (c *authClient) EmailExists(ctx context.Context, email string) (bool, error) {
	body := map[string]string{"email": email}
	var res struct {
		Exists bool `json:"exists"`
	}
	if err := c.api.Do(ctx, http.MethodPost, "/auth/email-exists", "", nil, body, &res); err != nil {
		return false, err
	}
	return res.Exists, nil
}

func (c *authClient) SendVerification(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.api.Do(ctx, http.MethodPost, "/auth/verification/send", "", nil, body, nil)
}

func (c *authClient) VerifyCode(ctx context.Context, email, code string) (string, error) {
	body := map[string]string{"email": email, "code": code}
	var res struct {
		VerificationToken string `json:"verificationToken"`
	}
	if err := c.api.Do(ctx, http.MethodPost, "/auth/verification/verify", "", nil, body, &res); err != nil {
		return "", err
	}
	return res.VerificationToken, nil
}
