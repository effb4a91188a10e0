package bookclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"elibrary/pkg/domain"
)

// Client calls the book service over HTTP. Browsing works on the public
// client; catalog management rides the authorized client.
type Client struct {
	baseURL    string
	public     *http.Client
	authorized *http.Client
}

// APIError represents a book service error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs a book service client.
func NewClient(baseURL string, public, authorized *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		public:     public,
		authorized: authorized,
	}
}

// BrowseFilter narrows a catalog browse. Zero value lists everything.
type BrowseFilter struct {
	Query  string
	Genre  string
	Author string
}

// Browse lists catalog entries with availability counts. Works without a
// session; pass authorized=true once signed in so the gateway sees the
// credential.
func (c *Client) Browse(ctx context.Context, filter BrowseFilter, authorized bool) ([]domain.Book, error) {
	params := url.Values{}
	if filter.Query != "" {
		params.Set("query", filter.Query)
	}
	if filter.Genre != "" {
		params.Set("genre", filter.Genre)
	}
	if filter.Author != "" {
		params.Set("author", filter.Author)
	}
	path := "/books/browse"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	httpClient := c.public
	if authorized {
		httpClient = c.authorized
	}
	var books []domain.Book
	if err := c.doJSON(ctx, httpClient, http.MethodGet, path, nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// BookRequest carries the admin create/update form.
type BookRequest struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Genre         string `json:"genre"`
	PublishedDate string `json:"publishedDate"`
	TotalCopies   int    `json:"numberOfCopies"`
}

// AdminAddBook creates a catalog entry.
func (c *Client) AdminAddBook(ctx context.Context, req BookRequest) (domain.Book, error) {
	var book domain.Book
	if err := c.doJSON(ctx, c.authorized, http.MethodPost, "/books", req, &book); err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

// AdminUpdateBook updates a catalog entry.
func (c *Client) AdminUpdateBook(ctx context.Context, id int64, req BookRequest) (domain.Book, error) {
	var book domain.Book
	path := fmt.Sprintf("/books/%d", id)
	if err := c.doJSON(ctx, c.authorized, http.MethodPut, path, req, &book); err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

// AdminDeleteBook removes a catalog entry.
func (c *Client) AdminDeleteBook(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/books/%d", id)
	return c.doJSON(ctx, c.authorized, http.MethodDelete, path, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, httpClient *http.Client, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		var errResp struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(raw, &errResp)
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	return nil
}
