package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		BaseURL:      server.URL + "/",
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		RedirectURL:  "https://bridge.example.com/oauth/callback",
	})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprint(w, body)
}

func TestClient_ExchangeCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/access_token" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		expected := map[string]string{
			"code":          "auth-code",
			"client_id":     "app-id",
			"client_secret": "app-secret",
			"redirect_uri":  "https://bridge.example.com/oauth/callback",
		}
		for key, want := range expected {
			if got := r.Form.Get(key); got != want {
				t.Errorf("expected %s=%q, got %q", key, want, got)
			}
		}
		writeJSON(w, http.StatusOK, `{"access_token":"short-token","token_type":"bearer","expires_in":3600}`)
	})

	token, err := client.ExchangeCode(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("exchange code: %v", err)
	}
	if token != "short-token" {
		t.Fatalf("expected short-token, got %q", token)
	}
}

func TestClient_ExchangeCodeErrors(t *testing.T) {
	tests := map[string]struct {
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		"graph error envelope": {
			status: http.StatusBadRequest,
			body:   `{"error":{"message":"This authorization code has been used.","type":"OAuthException","code":100}}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected APIError, got %v", err)
				}
				if apiErr.Status != http.StatusBadRequest || apiErr.Code != 100 {
					t.Fatalf("unexpected api error %+v", apiErr)
				}
				if !strings.Contains(err.Error(), "has been used") {
					t.Fatalf("expected upstream message in %q", err.Error())
				}
			},
		},
		"missing access token": {
			status: http.StatusOK,
			body:   `{"token_type":"bearer"}`,
			check: func(t *testing.T, err error) {
				if err == nil {
					t.Fatalf("expected error for missing access token")
				}
			},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			_, err := client.ExchangeCode(context.Background(), "auth-code")
			tc.check(t, err)
		})
	}
}

func TestClient_ExtendToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		query := r.URL.Query()
		if query.Get("grant_type") != "fb_exchange_token" || query.Get("fb_exchange_token") != "short-token" {
			t.Errorf("unexpected query %v", query)
		}
		if query.Get("client_id") != "app-id" || query.Get("client_secret") != "app-secret" {
			t.Errorf("missing client credentials in %v", query)
		}
		writeJSON(w, http.StatusOK, `{"access_token":"long-token","token_type":"bearer"}`)
	})

	token, err := client.ExtendToken(context.Background(), "short-token")
	if err != nil {
		t.Fatalf("extend token: %v", err)
	}
	if token != "long-token" {
		t.Fatalf("expected long-token, got %q", token)
	}
}

func TestClient_ExtendTokenErrors(t *testing.T) {
	tests := map[string]struct {
		status int
		body   string
		want   error
	}{
		"missing field":  {status: http.StatusOK, body: `{}`, want: ErrMissingAccessToken},
		"malformed json": {status: http.StatusOK, body: `{"access_token":`},
		"server error":   {status: http.StatusInternalServerError, body: `oops`},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			_, err := client.ExtendToken(context.Background(), "short-token")
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestClient_ListPages(t *testing.T) {
	tests := map[string]struct {
		body string
		want []string
	}{
		"two pages":   {body: `{"data":[{"id":"p1","name":"One"},{"id":"p2"}]}`, want: []string{"p1", "p2"}},
		"empty list":  {body: `{"data":[]}`, want: []string{}},
		"absent data": {body: `{}`, want: []string{}},
		"null data":   {body: `{"data":null}`, want: []string{}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/me/accounts" || r.URL.Query().Get("access_token") != "long-token" {
					t.Errorf("unexpected request %s", r.URL.String())
				}
				writeJSON(w, http.StatusOK, tc.body)
			})
			pages, err := client.ListPages(context.Background(), "long-token")
			if err != nil {
				t.Fatalf("list pages: %v", err)
			}
			if pages == nil {
				t.Fatalf("expected non-nil slice")
			}
			if len(pages) != len(tc.want) {
				t.Fatalf("expected %d pages, got %d", len(tc.want), len(pages))
			}
			for idx, id := range tc.want {
				if pages[idx].ID != id {
					t.Fatalf("expected page %q at %d, got %q", id, idx, pages[idx].ID)
				}
			}
		})
	}
}

func TestClient_PageDetails(t *testing.T) {
	tests := map[string]struct {
		body string
		want string
	}{
		"connected account":  {body: `{"id":"p1","connected_instagram_account":{"id":"ig-c"}}`, want: "ig-c"},
		"business account":   {body: `{"id":"p1","instagram_business_account":{"id":"ig-b"}}`, want: "ig-b"},
		"connected wins":     {body: `{"connected_instagram_account":{"id":"ig-c"},"instagram_business_account":{"id":"ig-b"}}`, want: "ig-c"},
		"empty connected id": {body: `{"connected_instagram_account":{"id":""},"instagram_business_account":{"id":"ig-b"}}`, want: "ig-b"},
		"nothing linked":     {body: `{"id":"p1"}`, want: ""},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/p1" {
					t.Errorf("unexpected path %q", r.URL.Path)
				}
				if got := r.URL.Query().Get("fields"); got != pageFields {
					t.Errorf("unexpected fields %q", got)
				}
				writeJSON(w, http.StatusOK, tc.body)
			})
			page, err := client.PageDetails(context.Background(), "p1", "long-token")
			if err != nil {
				t.Fatalf("page details: %v", err)
			}
			if page.ID != "p1" || page.BusinessAccountID != tc.want {
				t.Fatalf("expected business account %q, got %+v", tc.want, page)
			}
		})
	}
}

func TestClient_PageDetailsTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	client := NewClient(Config{BaseURL: server.URL, PageTimeout: 50 * time.Millisecond})
	_, err := client.PageDetails(context.Background(), "p1", "long-token")
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if strings.Contains(err.Error(), "long-token") {
		t.Fatalf("expected access token scrubbed from %q", err.Error())
	}
}

func TestNewClient_TimeoutDefaults(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://graph.example.com"})
	if client.tokenHTTP.Timeout != DefaultTokenTimeout {
		t.Fatalf("expected token timeout %v, got %v", DefaultTokenTimeout, client.tokenHTTP.Timeout)
	}
	if client.pageHTTP.Timeout != DefaultPageTimeout {
		t.Fatalf("expected page timeout %v, got %v", DefaultPageTimeout, client.pageHTTP.Timeout)
	}
}
