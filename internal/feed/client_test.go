package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stellarlinkco/truthwatch/internal/config"
)

func newTestServer(t *testing.T, lookups *int32, statusHandler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/accounts/lookup", func(w http.ResponseWriter, r *http.Request) {
		if lookups != nil {
			atomic.AddInt32(lookups, 1)
		}
		if r.URL.Query().Get("acct") != "tester" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"id":"777","acct":"tester"}`)
	})
	mux.HandleFunc("/api/v1/accounts/777/statuses", statusHandler)
	return httptest.NewServer(mux)
}

func testClient(serverURL string) *Client {
	return NewClient(config.AccountConfig{Handle: "tester", BaseURL: serverURL})
}

func TestClient_FetchSinceID(t *testing.T) {
	var gotSince, gotLimit string
	srv := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		gotSince = r.URL.Query().Get("since_id")
		gotLimit = r.URL.Query().Get("limit")
		fmt.Fprint(w, `[
			{"id":"102","created_at":"2025-04-02T10:00:00Z","content":"<p>b</p>"},
			{"id":"101","created_at":"2025-04-02T09:00:00Z","content":"<p>a</p>"}
		]`)
	})
	defer srv.Close()

	posts, err := testClient(srv.URL).Fetch(context.Background(), "100", time.Time{})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if gotSince != "100" {
		t.Errorf("since_id = %q, want 100", gotSince)
	}
	if gotLimit != "40" {
		t.Errorf("limit = %q, want 40", gotLimit)
	}
	if len(posts) != 2 {
		t.Fatalf("len(posts) = %d, want 2", len(posts))
	}
	if posts[0].ID != "102" || posts[0].Content != "<p>b</p>" {
		t.Errorf("posts[0] = %+v", posts[0])
	}
	if !posts[0].CreatedAt.Equal(time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("created_at = %v", posts[0].CreatedAt)
	}
}

func TestClient_FetchColdStartFiltersByCreatedAfter(t *testing.T) {
	srv := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("since_id") {
			t.Error("since_id should not be set on cold start")
		}
		fmt.Fprint(w, `[
			{"id":"90","created_at":"2025-04-01T00:00:00Z","content":"old"},
			{"id":"95","created_at":"2025-04-02T12:00:00Z","content":"new"}
		]`)
	})
	defer srv.Close()

	cutoff := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	posts, err := testClient(srv.URL).Fetch(context.Background(), "", cutoff)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("len(posts) = %d, want 1", len(posts))
	}
	if posts[0].ID != "95" {
		t.Errorf("posts[0].ID = %q, want 95", posts[0].ID)
	}
}

func TestClient_AccountLookupCached(t *testing.T) {
	var lookups int32
	srv := newTestServer(t, &lookups, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	defer srv.Close()

	c := testClient(srv.URL)
	for i := 0; i < 3; i++ {
		if _, err := c.Fetch(context.Background(), "1", time.Time{}); err != nil {
			t.Fatalf("Fetch #%d error: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&lookups); n != 1 {
		t.Errorf("lookup called %d times, want 1", n)
	}
}

func TestClient_FetchStatusError(t *testing.T) {
	srv := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "1", time.Time{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if statusErr.Code != http.StatusTooManyRequests {
		t.Errorf("code = %d, want 429", statusErr.Code)
	}
}

func TestClient_FetchSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `[]`)
	})
	defer srv.Close()

	c := NewClient(config.AccountConfig{Handle: "tester", BaseURL: srv.URL, Token: "secret"})
	if _, err := c.Fetch(context.Background(), "1", time.Time{}); err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer secret", gotAuth)
	}
}

func TestClient_UnknownAccount(t *testing.T) {
	srv := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	defer srv.Close()

	c := NewClient(config.AccountConfig{Handle: "missing", BaseURL: srv.URL})
	if _, err := c.Fetch(context.Background(), "", time.Time{}); err == nil {
		t.Error("expected error for unknown account")
	}
}

func TestNewest(t *testing.T) {
	t1 := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	posts := []Post{
		{ID: "101", CreatedAt: t1},
		{ID: "102", CreatedAt: t2},
		{ID: "099", CreatedAt: t1},
	}
	if got := Newest(posts); got.ID != "102" {
		t.Errorf("Newest = %s, want 102", got.ID)
	}

	// Equal timestamps: deterministic tie-break by id ordering
	tied := []Post{
		{ID: "200", CreatedAt: t1},
		{ID: "201", CreatedAt: t1},
	}
	if got := Newest(tied); got.ID != "201" {
		t.Errorf("Newest tie = %s, want 201", got.ID)
	}
	reversed := []Post{tied[1], tied[0]}
	if got := Newest(reversed); got.ID != "201" {
		t.Errorf("Newest tie (reversed) = %s, want 201", got.ID)
	}
}
