package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmylchreest/pipette/internal/version"
)

func TestFetch(t *testing.T) {
	var gotAgent, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("X-Test")
		_, _ = w.Write([]byte("payload"))
	}))
	defer srv.Close()

	data, err := Fetch(context.Background(), srv.URL, FetchOptions{Headers: map[string]string{"X-Test": "yes"}})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("body = %q", data)
	}
	if gotAgent != version.UserAgent() {
		t.Errorf("User-Agent = %q", gotAgent)
	}
	if gotHeader != "yes" {
		t.Errorf("X-Test = %q", gotHeader)
	}
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.URL+"/missing", FetchOptions{}); err == nil {
		t.Error("expected error for 404")
	}
	if _, err := Fetch(context.Background(), srv.URL+"/big", FetchOptions{MaxBytes: 10}); err == nil {
		t.Error("expected error for oversized body")
	}

	if _, err := Fetch(context.Background(), srv.URL, FetchOptions{BlockPrivateHosts: true}); err == nil {
		t.Error("expected error for loopback server with private hosts blocked")
	}
	if _, err := Fetch(context.Background(), "ftp://example.com/a.png", FetchOptions{}); err == nil {
		t.Error("expected error for ftp URL")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Fetch(ctx, srv.URL, FetchOptions{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}
