package bookclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"elibrary/pkg/domain"
)

func TestBrowsePassesFilterParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/books/browse" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]domain.Book{
			{ID: 1, Title: "The Go Programming Language", AvailableCopies: 2, TotalCopies: 3},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), srv.Client())
	books, err := c.Browse(context.Background(), BrowseFilter{Query: "go", Genre: "tech"}, false)
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(books) != 1 || books[0].AvailableCopies != 2 {
		t.Fatalf("books = %+v", books)
	}
	if gotQuery != "genre=tech&query=go" {
		t.Fatalf("query = %q, want genre=tech&query=go", gotQuery)
	}
}

func TestBrowseWithoutFilterSendsNoParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("query = %q, want none", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]domain.Book{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), srv.Client())
	if _, err := c.Browse(context.Background(), BrowseFilter{}, false); err != nil {
		t.Fatalf("browse: %v", err)
	}
}

func TestAdminAddBookSendsCopiesField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/books" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["numberOfCopies"] != float64(3) {
			t.Errorf("numberOfCopies = %v, want 3", body["numberOfCopies"])
		}
		_ = json.NewEncoder(w).Encode(domain.Book{ID: 9, Title: body["title"].(string)})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), srv.Client())
	book, err := c.AdminAddBook(context.Background(), BookRequest{Title: "Dune", Author: "Frank Herbert", TotalCopies: 3})
	if err != nil {
		t.Fatalf("add book: %v", err)
	}
	if book.ID != 9 {
		t.Fatalf("book = %+v", book)
	}
}

func TestErrorResponseBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Book not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), srv.Client())
	err := c.AdminDeleteBook(context.Background(), 404)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "Book not found" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}
