package rooms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// requestTimeout bounds a single room API call.
const requestTimeout = 10 * time.Second

// Client consumes the hosted relay's room management API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a Client for the relay at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: requestTimeout},
	}
}

// Create asks the relay for a new room and returns its code.
func (c *Client) Create(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/rooms", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build room create request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("failed to create room: status %d", resp.StatusCode)
	}

	var decoded struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode room create response: %w", err)
	}
	if decoded.Code == "" {
		return "", fmt.Errorf("room create response carried no code")
	}
	return decoded.Code, nil
}

// Exists reports whether a room with the given code exists. The code is
// canonicalized to uppercase before the lookup.
func (c *Client) Exists(ctx context.Context, code string) (bool, error) {
	code = strings.ToUpper(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/rooms/"+code, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build room lookup request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to look up room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("failed to look up room: status %d", resp.StatusCode)
	}

	var decoded struct {
		Exists bool `json:"exists"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return false, fmt.Errorf("failed to decode room lookup response: %w", err)
	}
	return decoded.Exists, nil
}
