package client

import (
	"context"
	"net/url"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/dsp-console/api/transport"
	"github.com/fastygo/dsp-console/domain"
	"github.com/fastygo/dsp-console/internal/gateway"
)

// Authenticate posts the credentials as a form and returns the access token.
// The exchange bypasses session teardown so a rejected login never logs out
// whoever is currently signed in.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set(transport.FieldUsername, username)
	form.Set(transport.FieldPassword, password)

	var token transport.TokenResponse
	err := c.gw.DoJSON(ctx, gateway.Request{
		Method:       fasthttp.MethodPost,
		Path:         pathLogin,
		Form:         form,
		SkipTeardown: true,
	}, &token)
	if err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", domain.ErrAuthenticationFailed
	}
	return token.AccessToken, nil
}

// FetchIdentity resolves the identity behind an explicit credential, used
// right after Authenticate before the session holds the new token.
func (c *Client) FetchIdentity(ctx context.Context, credential string) (*domain.Identity, error) {
	var identity domain.Identity
	err := c.gw.DoJSON(ctx, gateway.Request{
		Method:       fasthttp.MethodGet,
		Path:         pathMe,
		Credential:   credential,
		SkipTeardown: true,
	}, &identity)
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// Me returns the identity of the current session. Unlike FetchIdentity it
// uses the session credential, so a 401 logs the session out.
func (c *Client) Me(ctx context.Context) (*domain.Identity, error) {
	var identity domain.Identity
	if err := c.gw.DoJSON(ctx, gateway.Request{Method: fasthttp.MethodGet, Path: pathMe}, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Register creates an account. It does not sign the new user in.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.Identity, error) {
	if reg.Username == "" || reg.Password == "" || reg.Email == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "username, email and password are required", nil)
	}
	if reg.Role == "" {
		reg.Role = domain.DefaultRegistrationRole
	}
	var identity domain.Identity
	err := c.gw.DoJSON(ctx, gateway.Request{
		Method:       fasthttp.MethodPost,
		Path:         pathRegister,
		JSON:         reg,
		SkipTeardown: true,
	}, &identity)
	if err != nil {
		return nil, err
	}
	return &identity, nil
}
