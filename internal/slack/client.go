package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const apiBaseURL = "https://slack.com/api"

// ErrSlackAPI wraps error responses from the Slack Web API.
var ErrSlackAPI = errors.New("slack api error")

// User is the slice of a Slack member profile we care about.
type User struct {
	ID       string
	Email    string
	RealName string
}

// Client calls the Slack Web API with a bot token.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Slack Web API client.
func NewClient(botToken string) *Client {
	return &Client{
		token:   botToken,
		baseURL: apiBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type userInfoResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	User  struct {
		ID      string `json:"id"`
		Profile struct {
			Email    string `json:"email"`
			RealName string `json:"real_name"`
		} `json:"profile"`
	} `json:"user"`
}

// UserInfo fetches a workspace member's profile (users.info).
func (c *Client) UserInfo(ctx context.Context, userID string) (User, error) {
	endpoint := fmt.Sprintf("%s/users.info?%s", c.baseURL, url.Values{"user": {userID}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return User{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("users.info: %w", err)
	}
	defer resp.Body.Close()

	var body userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return User{}, fmt.Errorf("decode users.info response: %w", err)
	}
	if !body.OK {
		return User{}, fmt.Errorf("%w: %s", ErrSlackAPI, body.Error)
	}

	return User{
		ID:       body.User.ID,
		Email:    body.User.Profile.Email,
		RealName: body.User.Profile.RealName,
	}, nil
}
