package transport

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestAuthorizedAttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-Id")
	}))
	defer srv.Close()

	client := NewAuthorized(time.Second, staticToken("tok-1"), nil)
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer tok-1" {
		t.Fatalf("Authorization = %q, want Bearer tok-1", gotAuth)
	}
	if gotReqID == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestAuthorizedOmitsHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	client := NewAuthorized(time.Second, staticToken(""), nil)
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "" {
		t.Fatalf("Authorization = %q, want empty without a token", gotAuth)
	}
}

func TestPublicSendsNoAuthorization(t *testing.T) {
	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-Id")
	}))
	defer srv.Close()

	client := NewPublic(time.Second)
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	if gotAuth != "" {
		t.Fatalf("Authorization = %q, want empty on the public client", gotAuth)
	}
	if gotReqID == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestHookFiresOnAuthFailures(t *testing.T) {
	status := int32(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(atomic.LoadInt32(&status)))
	}))
	defer srv.Close()

	var fired int32
	client := NewAuthorized(time.Second, staticToken("tok-1"), func() {
		atomic.AddInt32(&fired, 1)
	})

	get := func() {
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		resp.Body.Close()
	}

	get()
	if n := atomic.LoadInt32(&fired); n != 0 {
		t.Fatalf("hook fired %d times on 200", n)
	}

	atomic.StoreInt32(&status, http.StatusUnauthorized)
	get()
	atomic.StoreInt32(&status, http.StatusForbidden)
	get()
	if n := atomic.LoadInt32(&fired); n != 2 {
		t.Fatalf("hook fired %d times, want once per 401/403 response", n)
	}

	atomic.StoreInt32(&status, http.StatusNotFound)
	get()
	if n := atomic.LoadInt32(&fired); n != 2 {
		t.Fatalf("hook fired on a non-auth status")
	}
}
