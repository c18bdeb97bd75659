package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quotedesk/quotedesk/internal/auth"
)

// AuthService exchanges credentials for a bearer token at the backend.
type AuthService struct {
	client *Client
}

// NewAuthService constructs an AuthService.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the only backend response without the status
// envelope: success returns the token model directly, failure is an
// HTTP 401 with a detail message.
type loginResponse struct {
	StrAccessToken string `json:"strAccessToken"`
	StrTokenType   string `json:"strTokentype"`
	DctUserInfo    struct {
		IntUserID       int64  `json:"intUserId"`
		StrEmail        string `json:"strEmail"`
		StrUserName     string `json:"strUserName"`
		StrBusinessName string `json:"strBusinessName"`
	} `json:"dctUserInfo"`
}

// Login authenticates against the backend. A rejected login surfaces
// the backend message; it never maps to the session-resetting
// unauthorized error.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *auth.UserInfo, error) {
	body, err := s.client.CallRaw(ctx, loginPath, loginRequest{Email: email, Password: password})
	if err != nil {
		return "", nil, err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", nil, fmt.Errorf("backend: decode login response: %w", err)
	}
	if resp.StrAccessToken == "" {
		return "", nil, &RejectedError{Message: "login failed"}
	}

	user := &auth.UserInfo{
		ID:    resp.DctUserInfo.IntUserID,
		Name:  resp.DctUserInfo.StrUserName,
		Email: resp.DctUserInfo.StrEmail,
	}
	return resp.StrAccessToken, user, nil
}
