package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientEmbedMany(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody struct {
		Model string   `json:"model"`
		Texts []string `json:"texts"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"embeddings": [[1, 0], [0, 1]]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "secret", "mini", time.Second)
	vectors, err := client.EmbedMany(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedMany error: %v", err)
	}

	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotBody.Model != "mini" || len(gotBody.Texts) != 2 {
		t.Fatalf("unexpected payload: %+v", gotBody)
	}
	if len(vectors) != 2 || vectors[1][1] != 1 {
		t.Fatalf("unexpected vectors: %v", vectors)
	}
	if client.ModelID() != "http:mini" {
		t.Fatalf("unexpected model id: %s", client.ModelID())
	}
}

func TestClientEmbedOne(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings": [[0.5, 0.5, 0]]}`))
	}))
	defer server.Close()

	vec, err := NewClient(server.URL, "", "mini", 0).EmbedOne(context.Background(), "hello")
	if err != nil {
		t.Fatalf("EmbedOne error: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("unexpected vector: %v", vec)
	}
}

func TestClientErrors(t *testing.T) {
	t.Parallel()

	short := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings": [[1, 0]]}`))
	}))
	defer short.Close()

	if _, err := NewClient(short.URL, "", "m", time.Second).EmbedMany(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error for short response")
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	if _, err := NewClient(failing.URL, "", "m", time.Second).EmbedMany(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
