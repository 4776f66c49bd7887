package transport

// TokenResponse is the body returned by the login endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login form field names expected by the backend's password flow.
const (
	FieldUsername = "username"
	FieldPassword = "password"
)
