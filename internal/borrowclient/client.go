package borrowclient

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

// Client calls the borrowing service over HTTP. Every endpoint is
// authorized; the transport attaches the bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError represents a borrowing service error response. Message carries
// the server's wording verbatim so business-rule rejections stay readable.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs a borrowing service client on the authorized
// transport.
func NewClient(baseURL string, authorized *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: authorized,
	}
}

// Borrow creates a loan for the given book. The server re-derives the user
// from the credential; userID travels in the body because the borrowing
// service validates it against the token.
func (c *Client) Borrow(ctx context.Context, bookID, userID int64) (domain.LoanRecord, error) {
	payload := map[string]int64{"bookId": bookID, "userId": userID}
	var loan domain.LoanRecord
	if err := c.doJSON(ctx, http.MethodPost, "/borrows", payload, &loan); err != nil {
		return domain.LoanRecord{}, err
	}
	return loan, nil
}

// Return marks a loan as returned.
func (c *Client) Return(ctx context.Context, loanID int64) (domain.LoanRecord, error) {
	path := fmt.Sprintf("/borrows/%d/return", loanID)
	var loan domain.LoanRecord
	if err := c.doJSON(ctx, http.MethodPut, path, struct{}{}, &loan); err != nil {
		return domain.LoanRecord{}, err
	}
	return loan, nil
}

// MyLoans lists the loan history of the user behind the credential. The
// client never supplies a user id here.
func (c *Client) MyLoans(ctx context.Context) ([]domain.LoanRecord, error) {
	var loans []domain.LoanRecord
	if err := c.doJSON(ctx, http.MethodGet, "/borrows/my-borrows", nil, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

// AllLoans lists every loan record. The server enforces the admin role.
func (c *Client) AllLoans(ctx context.Context) ([]domain.LoanRecord, error) {
	var loans []domain.LoanRecord
	if err := c.doJSON(ctx, http.MethodGet, "/borrows/admin/all", nil, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
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
	resp, err := c.httpClient.Do(req)
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
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" || strings.HasPrefix(msg, "{") {
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
