// internal/client/user_client.go

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

// UserClient resolves stored user profiles from the user-service.
type UserClient interface {
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
}

type userClient struct {
	baseURL    string
	httpClient *http.Client
}

type UserProfile struct {
	UserID          string `json:"userId"`
	Username        string `json:"username,omitempty"`
	NickName        string `json:"nickName,omitempty"`
	Email           string `json:"email,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// DisplayName is the name shown to other users.
func (p *UserProfile) DisplayName() string {
	switch {
	case p.Username != "":
		return p.Username
	case p.NickName != "":
		return p.NickName
	case p.Email != "":
		return p.Email
	default:
		return "Unknown"
	}
}

func NewUserClient(baseURL string, timeout time.Duration) UserClient {
	return &userClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *userClient) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("user service url not configured")
	}
	endpoint := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUserNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("get user profile failed: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var result UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.UserID == "" {
		result.UserID = userID
	}

	return &result, nil
}
