package apiclient

import (
	"context"
	"net/http"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
)

// Login exchanges credentials for a token pair. Rejected credentials come
// back as an auth_expired error with a credentials message.
func (c *Client) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	var pair models.TokenPair
	err := c.public().do(ctx, call{
		op:     "login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
		out:    &pair,
	})
	if err != nil {
		if apperr.IsAuthExpired(err) {
			return pair, &apperr.Error{Kind: apperr.KindAuthExpired, Message: "invalid email or password", Err: err}
		}
		return pair, err
	}
	if pair.AccessToken == "" {
		return pair, apperr.Transient("login response carried no access token", nil)
	}
	return pair, nil
}

// RefreshToken trades a refresh token for a new pair. It never triggers a
// refresh itself.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	var pair models.TokenPair
	err := c.public().do(ctx, call{
		op:     "refresh_token",
		method: http.MethodPost,
		path:   "/auth/refreshToken",
		body:   map[string]string{"refreshToken": refreshToken},
		out:    &pair,
	})
	if err != nil {
		return pair, err
	}
	if pair.AccessToken == "" {
		return pair, apperr.Transient("refresh response carried no access token", nil)
	}
	return pair, nil
}

func (c *Client) public() *Client {
	cp := *c
	cp.tokens = nil
	return &cp
}
