package httpclient

import "net/http"

// AuthConfig holds the bearer token the inference servers expect.
type AuthConfig struct {
	Token string
}

// BearerAuth returns auth sending "Authorization: Bearer <token>", or nil for
// an empty token so no header is sent.
func BearerAuth(token string) *AuthConfig {
	if token == "" {
		return nil
	}
	return &AuthConfig{Token: token}
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
}
