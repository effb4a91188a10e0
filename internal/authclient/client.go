package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"elibrary/pkg/domain"
)

// Client calls the auth and user endpoints over HTTP. Login and Register go
// through the public client; everything else rides the authorized client,
// which attaches the bearer token itself.
type Client struct {
	baseURL    string
	public     *http.Client
	authorized *http.Client
}

// APIError represents an auth service error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs an auth service client.
func NewClient(baseURL string, public, authorized *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		public:     public,
		authorized: authorized,
	}
}

// Login exchanges credentials for a bearer token on the public channel.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp loginResponse
	if err := c.doJSON(ctx, c.public, http.MethodPost, "/auth/login", payload, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// RegisterRequest carries the public registration form.
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	City        string `json:"city"`
}

// Register creates a new account. The server answers with a plain
// confirmation message.
func (c *Client) Register(ctx context.Context, reg RegisterRequest) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/register", reg)
	if err != nil {
		return "", err
	}
	resp, err := c.public.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", &APIError{Status: resp.StatusCode, Message: errorMessage(body, resp.Status)}
	}
	return strings.TrimSpace(string(body)), nil
}

// Profile fetches the identity bound to the current token.
func (c *Client) Profile(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := c.doJSON(ctx, c.authorized, http.MethodGet, "/users/profile", nil, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// UpdateProfile changes the mutable contact fields of the current user.
func (c *Client) UpdateProfile(ctx context.Context, name, phoneNumber, city string) (domain.User, error) {
	payload := map[string]string{
		"name":        name,
		"phoneNumber": phoneNumber,
		"city":        city,
	}
	var user domain.User
	if err := c.doJSON(ctx, c.authorized, http.MethodPut, "/users/profile", payload, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// ChangePassword rotates the current user's password.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	payload := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	return c.doJSON(ctx, c.authorized, http.MethodPost, "/auth/change-password", payload, nil)
}

// AdminListUsers returns all registered users (admin role required
// server-side).
func (c *Client) AdminListUsers(ctx context.Context) ([]domain.User, error) {
	var resp usersPage
	if err := c.doJSON(ctx, c.authorized, http.MethodGet, "/users/admin/all", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Content, nil
}

// AdminRestrictUser locks an account.
func (c *Client) AdminRestrictUser(ctx context.Context, userID int64) error {
	path := fmt.Sprintf("/users/admin/%d/restrict", userID)
	return c.doJSON(ctx, c.authorized, http.MethodPut, path, nil, nil)
}

// AdminActivateUser unlocks an account.
func (c *Client) AdminActivateUser(ctx context.Context, userID int64) error {
	path := fmt.Sprintf("/users/admin/%d/activate", userID)
	return c.doJSON(ctx, c.authorized, http.MethodPut, path, nil, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, httpClient *http.Client, method, path string, payload, out any) error {
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Message: errorMessage(body, resp.Status)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	return nil
}

func errorMessage(body []byte, fallback string) string {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &errResp)
	if errResp.Message != "" {
		return errResp.Message
	}
	if errResp.Error != "" {
		return errResp.Error
	}
	if msg := strings.TrimSpace(string(body)); msg != "" && !strings.HasPrefix(msg, "{") {
		return msg
	}
	return fallback
}

type loginResponse struct {
	Token string `json:"token"`
}

// usersPage matches the server's paged admin listing.
type usersPage struct {
	Content []domain.User `json:"content"`
}
