package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != "test-token" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))
			return
		}
		switch r.URL.Path {
		case "/v1/secret/data/dashboard":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"data":{"token_key":"c2VjcmV0"},"metadata":{"version":1}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetString(t *testing.T) {
	srv := newTestServer(t)
	client, err := NewClient(&Config{Address: srv.URL, Token: "test-token"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	got, err := client.GetString(context.Background(), "dashboard", "token_key")
	if err != nil {
		t.Fatalf("GetString() error = %v", err)
	}
	if got != "c2VjcmV0" {
		t.Errorf("GetString() = %q, want %q", got, "c2VjcmV0")
	}

	if _, err := client.GetString(context.Background(), "dashboard", "missing"); err == nil {
		t.Error("Expected error for missing field")
	}
	if _, err := client.GetString(context.Background(), "other", "token_key"); err == nil {
		t.Error("Expected error for missing secret")
	}
}

func TestGetStringForbidden(t *testing.T) {
	srv := newTestServer(t)
	client, err := NewClient(&Config{Address: srv.URL, Token: "wrong"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	if _, err := client.GetString(context.Background(), "dashboard", "token_key"); err == nil {
		t.Error("Expected error with wrong token")
	}
}
