package authn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProfileFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"birta@slodi.is","name":"Birta","picture":"ignored"}`))
	}))
	defer srv.Close()

	client := NewProfileClientURL(srv.URL, time.Second)
	profile, err := client.Fetch(context.Background(), "token-123")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if profile.Email != "birta@slodi.is" || profile.Name != "Birta" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestProfileFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewProfileClientURL(srv.URL, time.Second)
	_, err := client.Fetch(context.Background(), "token-123")
	if !errors.Is(err, ErrProfileFetchFailed) {
		t.Fatalf("expected ErrProfileFetchFailed, got %v", err)
	}
	if !IsUpstreamFailure(err) {
		t.Fatal("userinfo failure must count as upstream failure")
	}
}
